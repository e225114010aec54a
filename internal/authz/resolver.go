package authz

import (
	"context"
	"errors"
	"net/http"

	"github.com/jobport/jobport/internal/shared"
)

// Directory is the slice of the user store the resolver needs.
type Directory interface {
	FindPrincipal(ctx context.Context, id int64) (*Principal, error)
}

// Resolver turns an incoming request into a Principal, or nil when the
// caller is not (validly) authenticated.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (*Principal, error)
}

// SessionResolver resolves the principal from the session user ID via the
// user directory. Inactive accounts resolve to nil.
type SessionResolver struct {
	directory Directory
}

// NewSessionResolver constructs a SessionResolver.
func NewSessionResolver(directory Directory) *SessionResolver {
	return &SessionResolver{directory: directory}
}

// Resolve implements Resolver.
func (sr *SessionResolver) Resolve(ctx context.Context, r *http.Request) (*Principal, error) {
	sess := shared.SessionFromContext(ctx)
	if sess == nil {
		return nil, nil
	}
	id := sess.UserID()
	if id == 0 {
		return nil, nil
	}
	principal, err := sr.directory.FindPrincipal(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if principal == nil || !principal.IsActive {
		return nil, nil
	}
	return principal, nil
}
