// Package state defines the publish/subscribe contract REST services plug
// into and provides Store, an in-memory implementation.
//
// Subscriptions address a sub-state with a JSONPath-like pattern such as
// "$.users" or "$.account.posts[0]". Patterns are evaluated with JMESPath
// after the leading "$" is mapped onto the current node, so anything JMESPath
// accepts after that prefix works too. A handler runs only when the value its
// pattern selects changes.
package state
