package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession attaches the visitor's session to the context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the attached session, nil when absent.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// FlashTo queues a flash on the request session when one is present.
// Handlers running outside the session middleware simply drop the notice.
func FlashTo(ctx context.Context, kind, message string) {
	if sess := SessionFromContext(ctx); sess != nil {
		sess.Flash(kind, message)
	}
}
