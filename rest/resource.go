package rest

import (
	"fmt"
	"strings"

	"github.com/jtacoma/uritemplates"

	"github.com/kbukum/restkit/request"
)

var (
	collectionTemplate = mustTemplate("{+base}/{+name}")
	entityTemplate     = mustTemplate("{+base}/{+name}/{slug}")
)

func mustTemplate(t string) *uritemplates.UriTemplate {
	tmpl, err := uritemplates.Parse(t)
	if err != nil {
		panic(fmt.Sprintf("rest: bad uri template %q: %v", t, err))
	}
	return tmpl
}

// Resource is an addressable REST entity: a named collection under a base
// URL, or one member of it. Resources are values; One, All and Copy return
// new instances and never modify the receiver.
type Resource struct {
	base       string
	name       string
	slug       string
	collection bool
	opts       []request.Option
}

// NewResource returns the collection resource name under base. opts are
// applied to every request the resource builds.
func NewResource(base, name string, opts ...request.Option) *Resource {
	return &Resource{
		base:       base,
		name:       name,
		slug:       name,
		collection: true,
		opts:       append([]request.Option(nil), opts...),
	}
}

func (r *Resource) Base() string     { return r.base }
func (r *Resource) Name() string     { return r.name }
func (r *Resource) Slug() string     { return r.slug }
func (r *Resource) Collection() bool { return r.collection }

// SetSlug changes the entity slug in place.
func (r *Resource) SetSlug(slug string) {
	r.slug = slug
}

// One addresses the entity id.
func (r *Resource) One(id string) *Resource {
	c := r.Copy()
	c.slug = id
	c.collection = false
	return c
}

// All addresses the whole collection. The slug is kept.
func (r *Resource) All() *Resource {
	c := r.Copy()
	c.collection = true
	return c
}

// Copy returns a shallow clone.
func (r *Resource) Copy() *Resource {
	c := *r
	c.opts = append([]request.Option(nil), r.opts...)
	return &c
}

// URL returns the absolute address: base/name for the collection and
// base/name/slug for a single entity. The slug is percent-encoded.
func (r *Resource) URL() string {
	vars := map[string]interface{}{
		"base": strings.TrimRight(r.base, "/"),
		"name": strings.Trim(r.name, "/"),
	}
	tmpl := collectionTemplate
	if !r.collection && r.slug != "" {
		tmpl = entityTemplate
		vars["slug"] = r.slug
	}
	u, err := tmpl.Expand(vars)
	if err != nil {
		return request.Join(r.base, r.name)
	}
	return u
}

// Request builds a request for m against the resource's address.
func (r *Resource) Request(m request.Method) *request.Request {
	return request.New(m, r.URL(), r.opts...)
}

func (r *Resource) Get() *request.Request     { return r.Request(request.GET) }
func (r *Resource) Post() *request.Request    { return r.Request(request.POST) }
func (r *Resource) Put() *request.Request     { return r.Request(request.PUT) }
func (r *Resource) Patch() *request.Request   { return r.Request(request.PATCH) }
func (r *Resource) Delete() *request.Request  { return r.Request(request.DELETE) }
func (r *Resource) Options() *request.Request { return r.Request(request.OPTIONS) }
func (r *Resource) Head() *request.Request    { return r.Request(request.HEAD) }
func (r *Resource) Link() *request.Request    { return r.Request(request.LINK) }

func (r *Resource) String() string { return r.URL() }
