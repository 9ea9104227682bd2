package mockapi

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/negotiate"
)

const maxMemory = 10 << 20

// routes registers the API on engine.
func (s *Server) routes(engine *gin.Engine) {
	engine.GET("/health", s.health)
	engine.Any("/echo", s.echo)
	engine.Handle(http.MethodOptions, "/", s.allow)

	engine.GET("/:collection", s.list)
	engine.HEAD("/:collection", s.head)
	engine.POST("/:collection", s.create)
	engine.OPTIONS("/:collection", s.allow)

	engine.GET("/:collection/:id", s.get)
	engine.HEAD("/:collection/:id", s.head)
	engine.PUT("/:collection/:id", s.replace)
	engine.PATCH("/:collection/:id", s.patch)
	engine.DELETE("/:collection/:id", s.remove)
	engine.OPTIONS("/:collection/:id", s.allow)
	engine.Handle("LINK", "/:collection/:id", s.link)
}

func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus != 0 {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse().WithRequestID(c.GetString(logger.FieldRequestID)))
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.Internal(err).ToResponse().WithRequestID(c.GetString(logger.FieldRequestID)))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "mockapi"})
}

func (s *Server) allow(c *gin.Context) {
	c.Header("Allow", "GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS, LINK")
	c.Status(http.StatusNoContent)
}

func (s *Server) list(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.List(c.Param("collection")))
}

func (s *Server) head(c *gin.Context) {
	if id := c.Param("id"); id != "" {
		if _, ok := s.store.Get(c.Param("collection"), id); !ok {
			c.Status(http.StatusNotFound)
			return
		}
	}
	c.Status(http.StatusOK)
}

func (s *Server) get(c *gin.Context) {
	name, id := c.Param("collection"), c.Param("id")
	item, ok := s.store.Get(name, id)
	if !ok {
		respondError(c, apperrors.NotFound(name, id))
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) create(c *gin.Context) {
	item, err := bindItem(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.store.Create(c.Param("collection"), item))
}

func (s *Server) replace(c *gin.Context) {
	item, err := bindItem(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store.Replace(c.Param("collection"), c.Param("id"), item))
}

func (s *Server) patch(c *gin.Context) {
	fields, err := bindItem(c)
	if err != nil {
		respondError(c, err)
		return
	}
	name, id := c.Param("collection"), c.Param("id")
	item, ok := s.store.Patch(name, id, fields)
	if !ok {
		respondError(c, apperrors.NotFound(name, id))
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) remove(c *gin.Context) {
	name, id := c.Param("collection"), c.Param("id")
	if !s.store.Delete(name, id) {
		respondError(c, apperrors.NotFound(name, id))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) link(c *gin.Context) {
	name, id := c.Param("collection"), c.Param("id")
	if _, ok := s.store.Get(name, id); !ok {
		respondError(c, apperrors.NotFound(name, id))
		return
	}
	c.Status(http.StatusNoContent)
}

// bindItem reads a JSON object from the request body.
func bindItem(c *gin.Context) (Item, error) {
	var item Item
	if err := c.ShouldBindJSON(&item); err != nil {
		return nil, apperrors.Validation("request body must be a JSON object").WithCause(err)
	}
	if item == nil {
		return nil, apperrors.Validation("request body must be a JSON object")
	}
	return item, nil
}

// Echo is the body of an /echo response.
type Echo struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Query       map[string]string `json:"query"`
	Headers     map[string]string `json:"headers"`
	ContentType string            `json:"content_type"`
	Body        any               `json:"body"`
	Files       map[string]string `json:"files,omitempty"`
}

// echo reflects the request back, decoding the body by its media type.
func (s *Server) echo(c *gin.Context) {
	r := c.Request
	e := Echo{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       make(map[string]string),
		Headers:     make(map[string]string),
		ContentType: r.Header.Get("Content-Type"),
	}
	for k, v := range r.URL.Query() {
		e.Query[k] = strings.Join(v, ",")
	}
	for k, v := range r.Header {
		e.Headers[k] = strings.Join(v, ",")
	}

	switch negotiate.MediaType(e.ContentType) {
	case negotiate.TypeMultipart:
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			respondError(c, apperrors.Validation("malformed multipart body").WithCause(err))
			return
		}
		fields := make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			fields[k] = strings.Join(v, ",")
		}
		e.Body = fields
		e.Files = make(map[string]string)
		for k, fh := range r.MultipartForm.File {
			if len(fh) > 0 {
				e.Files[k] = fh[0].Filename
			}
		}
	case negotiate.TypeForm:
		if err := r.ParseForm(); err != nil {
			respondError(c, apperrors.Validation("malformed form body").WithCause(err))
			return
		}
		fields := make(map[string]string)
		for k, v := range r.PostForm {
			fields[k] = strings.Join(v, ",")
		}
		e.Body = fields
	default:
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(c, apperrors.Internal(err))
			return
		}
		e.Body = negotiate.Mimeify(raw, negotiate.MediaType(e.ContentType))
		if b, ok := e.Body.([]byte); ok {
			e.Body = string(b)
		}
	}
	c.JSON(http.StatusOK, e)
}
