package auth

import "context"

// TokenGenerator abstracts token creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenGenerator interface {
	Generate(ctx context.Context, user User) (string, error)
}

// PhotoStore persists an uploaded profile photo and returns its public URL.
// Delete takes a URL returned by Save.
type PhotoStore interface {
	Save(ctx context.Context, filename, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, url string) error
}
