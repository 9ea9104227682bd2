// Package mockapi serves an in-memory REST API: any path segment names a
// collection whose members can be listed, created, read, replaced, patched
// and deleted. It backs the integration tests of package rest and the
// "restkit mock" command.
package mockapi
