package server

import (
	"time"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreateProposal handles POST /api/proposals. The voting period is a Go
// duration string ("72h") and must be at least the configured minimum.
func (s *Server) CreateProposal(c *fiber.Ctx) error {
	ctx := c.UserContext()
	account := principal(c)

	var req struct {
		Description  string `json:"description"`
		ContentRef   string `json:"content_ref"`
		VotingPeriod string `json:"voting_period"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Description == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Description is required"))
	}
	period, err := time.ParseDuration(req.VotingPeriod)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("voting_period must be a duration string such as \"72h\""))
	}

	proposal, err := s.governance.CreateProposal(ctx, account, req.Description, req.ContentRef, period)
	observeOp("create_proposal", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(proposal)
}

// GetProposal handles GET /api/proposals/:id.
func (s *Server) GetProposal(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	proposal, err := s.governance.GetProposal(id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(proposal)
}

// CastVote handles POST /api/proposals/:id/votes.
func (s *Server) CastVote(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Support *bool `json:"support"`
	}
	if err := c.BodyParser(&req); err != nil || req.Support == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("support (true or false) is required"))
	}

	err = s.governance.CastVote(c.UserContext(), principal(c), id, *req.Support)
	observeOp("cast_vote", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"proposal_id": id, "support": *req.Support})
}

// ExecuteProposal handles POST /api/proposals/:id/execute.
func (s *Server) ExecuteProposal(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	err = s.governance.ExecuteProposal(c.UserContext(), principal(c), id)
	observeOp("execute_proposal", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"proposal_id": id, "executed": true})
}

// CancelProposal handles POST /api/proposals/:id/cancel.
func (s *Server) CancelProposal(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	err = s.governance.CancelProposal(c.UserContext(), principal(c), id)
	observeOp("cancel_proposal", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"proposal_id": id, "canceled": true})
}

// HasVoted handles GET /api/proposals/:id/votes/:account.
func (s *Server) HasVoted(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return c.JSON(fiber.Map{
		"proposal_id": id,
		"account":     c.Params("account"),
		"voted":       s.governance.HasVoted(id, c.Params("account")),
	})
}
