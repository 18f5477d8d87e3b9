package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"vn.io.arda/provisioner/internal/application"
	"vn.io.arda/provisioner/internal/domain"
	"vn.io.arda/provisioner/internal/report"
)

// PendingReporter is the slice of the application service the report
// endpoint needs. A fake implementation is used in tests.
type PendingReporter interface {
	PendingReport(ctx context.Context) (domain.PendingReport, error)
}

// Handler holds all HTTP handler methods.
type Handler struct {
	reports PendingReporter
	ledger  *application.Ledger
	repo    domain.OutcomeRepository
}

// NewHandler creates a new Handler.
func NewHandler(reports PendingReporter, ledger *application.Ledger, repo domain.OutcomeRepository) *Handler {
	return &Handler{reports: reports, ledger: ledger, repo: repo}
}

// PendingReport GET /reports/pending
// Returns the per-tenant invite-pending aggregate. `?format=text` renders
// the fixed-width listing instead of JSON. A single tenant's listing failure
// fails the whole report.
func (h *Handler) PendingReport(c echo.Context) error {
	rep, err := h.reports.PendingReport(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, report.Render(rep))
	}
	// encoding/json leaves non-ASCII unescaped, as required for the report.
	return c.JSON(http.StatusOK, rep)
}

// RecentBatches GET /batches/recent
func (h *Handler) RecentBatches(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"data": h.ledger.Recent(),
	})
}

// ListOutcomes GET /outcomes
func (h *Handler) ListOutcomes(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	records, err := h.repo.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, map[string]any{"data": records})
}

// Health GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":            "ok",
		"batches_processed": h.ledger.Total(),
	})
}
