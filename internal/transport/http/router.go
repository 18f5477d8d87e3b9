package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"vn.io.arda/provisioner/internal/transport/mw"
)

// NewRouter sets up all Echo routes and middleware.
func NewRouter(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(mw.RequestLogger())

	e.GET("/health", h.Health)
	e.GET("/reports/pending", h.PendingReport)
	e.GET("/batches/recent", h.RecentBatches)
	e.GET("/outcomes", h.ListOutcomes)

	return e
}
