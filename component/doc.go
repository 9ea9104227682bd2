// Package component defines the lifecycle contract long-lived restkit
// pieces implement (the REST client, the mock API server) and a registry
// that starts them in order and stops them in reverse.
package component
