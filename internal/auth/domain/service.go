package domain

import "context"

// Verifier validates bearer tokens issued by the identity provider.
type Verifier interface {
	// Verify accepts either the raw token or the full "Bearer <token>" header value.
	Verify(ctx context.Context, header string) (Identity, error)
}
