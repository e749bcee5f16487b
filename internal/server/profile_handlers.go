package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

type profileRequest struct {
	Username   string `json:"username"`
	Bio        string `json:"bio"`
	ContentRef string `json:"content_ref"`
}

// CreateProfile handles POST /api/profiles. The profile is keyed by the
// authenticated account address; a second create for the same account fails.
func (s *Server) CreateProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	account := principal(c)

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	profile, err := s.social.CreateProfile(ctx, account, req.Username, req.Bio, req.ContentRef)
	observeOp("create_profile", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// UpdateProfile handles PUT /api/profiles/me.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	account := principal(c)

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username is required"))
	}

	profile, err := s.social.UpdateProfile(ctx, account, req.Username, req.Bio, req.ContentRef)
	observeOp("update_profile", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// GetProfile handles GET /api/profiles/:account.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.social.GetProfile(c.Params("account"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// IsFollowing handles GET /api/profiles/:account/following/:target.
func (s *Server) IsFollowing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"follower":  c.Params("account"),
		"followed":  c.Params("target"),
		"following": s.social.IsFollowing(c.Params("account"), c.Params("target")),
	})
}
