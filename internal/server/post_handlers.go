package server

import (
	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. Callers reference content by hash
// rather than inlining it; upload bodies through /api/content first.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	account := principal(c)

	var req struct {
		ContentRef string `json:"content_ref"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.ContentRef == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("content_ref is required"))
	}

	post, err := s.social.CreatePost(ctx, account, req.ContentRef)
	observeOp("create_post", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.social.GetPost(id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// GetTotalPosts handles GET /api/posts/total.
func (s *Server) GetTotalPosts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"total_posts": s.social.TotalPosts()})
}

// LikePost handles POST /api/posts/:id/like.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	err = s.social.LikePost(c.UserContext(), principal(c), id)
	observeOp("like_post", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post_id": id, "liked": true})
}

// UnlikePost handles DELETE /api/posts/:id/like.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	err = s.social.UnlikePost(c.UserContext(), principal(c), id)
	observeOp("unlike_post", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post_id": id, "liked": false})
}

// HasLiked handles GET /api/posts/:id/likes/:account.
func (s *Server) HasLiked(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	return c.JSON(fiber.Map{
		"post_id": id,
		"account": c.Params("account"),
		"liked":   s.social.HasLiked(c.Params("account"), id),
	})
}

// CreateComment handles POST /api/posts/:id/comments. Comments are returned
// once here and discoverable afterwards through the event journal
// (GET /api/posts/:id/events).
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Comment content is required"))
	}

	comment, err := s.social.AddComment(c.UserContext(), principal(c), id, req.Content)
	observeOp("add_comment", err)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
