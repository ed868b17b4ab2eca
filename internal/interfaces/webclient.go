package interfaces

import (
	"context"

	"github.com/raysh454/kumo/internal/model"
)

// WebClient executes a request and returns a response. Implementations may go
// over plain HTTP or through the browser bridge; callers should not care which.
type WebClient interface {
	Do(ctx context.Context, req *model.Request) (*model.Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*model.Response, error)

	Close() error
}
