// Package context holds request-scoped values shared between middleware, services and logging.
package context

type contextKey string
