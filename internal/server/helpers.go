// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"strconv"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 200

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// principal returns the authenticated account address set by the auth
// middleware. Routes behind AuthRequired always have it.
func principal(c *fiber.Ctx) string {
	account, _ := c.Locals("account").(string)
	return account
}

// parseID extracts a route parameter by name as a positive uint64 ledger ID.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 64)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return id, nil
}

// observeOp records a ledger call outcome in the operations counter.
func observeOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = models.CodeInternal
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			outcome = appErr.Code
		}
	}
	observability.LedgerOpsTotal.WithLabelValues(op, outcome).Inc()
}

// metricsSink counts committed events by kind.
type metricsSink struct{}

func (metricsSink) Publish(_ context.Context, ev *models.Event) {
	observability.EventsEmittedTotal.WithLabelValues(ev.Kind).Inc()
}
