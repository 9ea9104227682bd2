// Package rest layers REST addressing and state publishing over package
// request.
//
// A Resource addresses either a collection (base/name) or one entity of it
// (base/name/id) and builds requests against that address. A Service owns a
// Resource, remembers a selected entity, and publishes the payloads of its
// verb calls to a state.Channel that other services can subscribe to:
//
//	users, _ := rest.NewService("users", "http://api.local")
//	posts, _ := rest.NewService("posts", "http://api.local",
//		rest.WithParent(users), rest.WithRelation("$.posts"))
//
//	fut, _ := users.Get(ctx, nil) // users' state now holds the collection
//
// Client bundles configuration, transport and services into a
// component.Component.
package rest
