package server

import (
	"strconv"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListEvents handles GET /api/events. Supports filtering by post_id,
// proposal_id, actor or kind (first match wins), plus limit/offset paging.
// Events come back in sequence order, which is also commit order.
func (s *Server) ListEvents(c *fiber.Ctx) error {
	ctx := c.UserContext()
	page := parsePagination(c, 50)

	var (
		events []models.Event
		err    error
	)
	switch {
	case c.Query("post_id") != "":
		postID, perr := strconv.ParseUint(c.Query("post_id"), 10, 64)
		if perr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid post_id"))
		}
		events, err = s.journal.ListByPost(ctx, postID, page.Limit, page.Offset)
	case c.Query("proposal_id") != "":
		proposalID, perr := strconv.ParseUint(c.Query("proposal_id"), 10, 64)
		if perr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid proposal_id"))
		}
		events, err = s.journal.ListByProposal(ctx, proposalID, page.Limit, page.Offset)
	case c.Query("actor") != "":
		events, err = s.journal.ListByActor(ctx, c.Query("actor"), page.Limit, page.Offset)
	case c.Query("kind") != "":
		events, err = s.journal.ListByKind(ctx, c.Query("kind"), page.Limit, page.Offset)
	default:
		events, err = s.journal.List(ctx, page.Limit, page.Offset)
	}
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"events": events,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GetPostEvents handles GET /api/posts/:id/events. This is how a post's
// comment history is discovered: comment_added events carry the comment
// body in their payload.
func (s *Server) GetPostEvents(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 50)

	events, err := s.journal.ListByPost(c.UserContext(), id, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{
		"post_id": id,
		"events":  events,
		"limit":   page.Limit,
		"offset":  page.Offset,
	})
}
