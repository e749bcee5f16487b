package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/follows/:account.
func (s *Server) Follow(c *fiber.Ctx) error {
	target := c.Params("account")
	err := s.social.FollowUser(c.UserContext(), principal(c), target)
	observeOp("follow_user", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"followed": target, "following": true})
}

// Unfollow handles DELETE /api/follows/:account.
func (s *Server) Unfollow(c *fiber.Ctx) error {
	target := c.Params("account")
	err := s.social.UnfollowUser(c.UserContext(), principal(c), target)
	observeOp("unfollow_user", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"followed": target, "following": false})
}
