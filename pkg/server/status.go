package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"nodedash/pkg/log"
	"nodedash/pkg/status"
)

// getStatus handles GET /api/status. It always answers 200 with the report.
func (srv *Server) getStatus(ctx echo.Context) error {
	query := srv.bindQuery(ctx)
	report := srv.provider.Refresh(ctx.Request().Context(), query)

	ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return ctx.JSON(http.StatusOK, report)
}

func (srv *Server) bindQuery(ctx echo.Context) status.Query {
	var query status.Query
	if err := (&echo.DefaultBinder{}).BindQueryParams(ctx, &query); err != nil {
		log.Warn().Err(err).Str("uri", ctx.Request().RequestURI).Msg("Ignoring malformed query")
		return status.Query{}
	}
	return query
}
