package server

import (
	"github.com/raysh454/kumo/internal/app"
	"github.com/raysh454/kumo/internal/interfaces"
)

type Config struct {
	// ListenAddr is the HTTP listen address for the API server.
	ListenAddr string

	// AppConfig configures the component stack. Nil means defaults.
	AppConfig *app.Config

	// Logger overrides the default stdout logger.
	Logger interfaces.Logger
}
