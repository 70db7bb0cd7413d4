// Package component defines lifecycle-managed infrastructure pieces and the
// registry that starts and stops them.
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: optional one-line description for startup logs
//   - Registry: ordered start, reverse-ordered stop
//   - Deferred: a cell filled exactly once by an asynchronous initializer
package component
