package server

import (
	"bytes"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"nodedash/pkg/log"
	"nodedash/pkg/models"
)

type indexPage struct {
	Report         models.StatusReport
	RefreshSeconds int
	RefreshURL     string
	Version        string
}

// serveIndex renders the status page. Node problems never turn into an error
// page: they are shown as the derived status.
func (srv *Server) serveIndex(ctx echo.Context) error {
	query := srv.bindQuery(ctx)
	report := srv.provider.Refresh(ctx.Request().Context(), query)

	data := indexPage{
		Report:         report,
		RefreshSeconds: int(srv.refreshInterval.Seconds()),
		RefreshURL:     refreshURL(report),
		Version:        srv.version,
	}

	var buf bytes.Buffer
	if err := srv.page.Execute(&buf, data); err != nil {
		log.Error().Err(err).Str("container", report.Container).Msg("Failed to render status page")
		return ctx.String(http.StatusInternalServerError, "failed to render status page")
	}

	ctx.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

// refreshURL points the next automatic reload at the same normalized window.
func refreshURL(report models.StatusReport) string {
	values := url.Values{}
	values.Set("container", report.Container)
	values.Set("since", report.Since)
	values.Set("tail", strconv.Itoa(report.Tail))
	return "/?" + values.Encode()
}
