package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/replybot/pkg/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RepliesResponse is the body of GET /replies.
type RepliesResponse struct {
	Count   int              `json:"count"`
	Replies []*storage.Reply `json:"replies"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStats returns the pipeline counters and the ledger size.
func (s *Server) handleStats(c *fiber.Ctx) error {
	var stats Stats
	if s.stats != nil {
		stats = s.stats.Stats()
	}

	count, err := s.driver.Count(c.Context())
	if err != nil {
		s.logger.Warn("failed to count replies", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count replies"})
	}
	stats.Replies = count

	return c.JSON(stats)
}

// handleListReplies returns the ledger, newest first.
func (s *Server) handleListReplies(c *fiber.Ctx) error {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "limit must be a non-negative integer",
			})
		}
		limit = n
	}

	replies, err := s.driver.List(c.Context())
	if err != nil {
		s.logger.Warn("failed to list replies", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list replies"})
	}

	if limit > 0 && len(replies) > limit {
		replies = replies[:limit]
	}

	return c.JSON(RepliesResponse{
		Count:   len(replies),
		Replies: replies,
	})
}

// handleGetReply returns the reply to a single mentioned status.
func (s *Server) handleGetReply(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	r, err := s.driver.Get(c.Context(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "reply not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get reply"})
	}

	return c.JSON(r)
}
