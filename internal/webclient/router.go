package webclient

import (
	"context"
	"fmt"

	"github.com/raysh454/kumo/internal/interfaces"
	"github.com/raysh454/kumo/internal/logging"
	"github.com/raysh454/kumo/internal/model"
)

// Router dispatches each request to the plain or browser backend based on
// Request.UseBrowser. Requests without the flag never touch the browser side
// at all.
type Router struct {
	plain   interfaces.WebClient
	browser interfaces.WebClient
	logger  logging.Logger
}

func NewRouter(plain, browser interfaces.WebClient, logger logging.Logger) *Router {
	return &Router{
		plain:   plain,
		browser: browser,
		logger:  logger.With(logging.Field{Key: "component", Value: "webclient/router"}),
	}
}

func (r *Router) Do(ctx context.Context, req *model.Request) (*model.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.UseBrowser {
		return r.browser.Do(ctx, req)
	}
	return r.plain.Do(ctx, req)
}

// Get goes over the plain path; browser fetches are requested explicitly via
// Do with UseBrowser set.
func (r *Router) Get(ctx context.Context, url string) (*model.Response, error) {
	return r.plain.Get(ctx, url)
}

func (r *Router) Close() error {
	perr := r.plain.Close()
	berr := r.browser.Close()
	if perr != nil {
		return perr
	}
	return berr
}

var _ interfaces.WebClient = (*Router)(nil)
