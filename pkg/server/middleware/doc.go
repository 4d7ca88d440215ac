// Package middleware holds HTTP middleware for the dbperm API: HS256
// bearer-token authentication and request ids.
package middleware
