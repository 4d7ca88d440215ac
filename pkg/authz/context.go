package authz

import "context"

type subjectKey struct{}

// SystemSubject is recorded in audit events when no caller identity is
// attached to the context.
const SystemSubject = "system"

// WithSubject returns a context carrying the identity of the caller.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFrom returns the caller identity, or SystemSubject.
func SubjectFrom(ctx context.Context) string {
	if s, ok := ctx.Value(subjectKey{}).(string); ok && s != "" {
		return s
	}
	return SystemSubject
}
