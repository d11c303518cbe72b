package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// getHealth reports that the dashboard process itself is serving.
func (srv *Server) getHealth(ctx echo.Context) error {
	limits := srv.provider.Limits()
	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"version":           srv.version,
		"default_container": limits.DefaultContainer,
	})
}
