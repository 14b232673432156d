package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
	"github.com/Pratiikpy/irys-confession-board/internal/pipeline"
)

type createConfessionRequest struct {
	Content       string   `json:"content"`
	IsPublic      *bool    `json:"is_public"`
	Author        string   `json:"author"`
	AuthorID      string   `json:"author_id"`
	Tags          []string `json:"tags"`
	Mood          string   `json:"mood"`
	CrisisSupport *bool    `json:"crisis_support"`
}

// authorContext builds the submission identity. Anonymous submissions
// carry no user ID, which also disables directed crisis messages.
func authorContext(name, id string, crisisSupport *bool) (domain.AuthorContext, error) {
	author := domain.AuthorContext{DisplayName: name, CrisisSupport: true}
	if crisisSupport != nil {
		author.CrisisSupport = *crisisSupport
	}
	if id != "" {
		userID, err := uuid.Parse(id)
		if err != nil {
			return domain.AuthorContext{}, apperrors.ValidationError("invalid author_id")
		}
		author.UserID = &userID
	}
	return author, nil
}

func (s *Server) handleCreateConfession(c echo.Context) error {
	var req createConfessionRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	author, err := authorContext(req.Author, req.AuthorID, req.CrisisSupport)
	if err != nil {
		return err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	post, err := s.deps.Pipeline.SubmitPost(c.Request().Context(), pipeline.PostSubmission{
		Content:  req.Content,
		IsPublic: isPublic,
		Tags:     req.Tags,
		Mood:     req.Mood,
		Author:   author,
	})
	if err != nil {
		return err
	}

	shareURL := "/#/c/" + post.TxID
	if !post.IsPublic {
		shareURL += "#" + post.Author
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "success",
		"id":             post.ID.String(),
		"tx_id":          post.TxID,
		"gateway_url":    post.GatewayURL,
		"blockchain_url": fmt.Sprintf("%s/%s", s.deps.Config.ExplorerURL, post.TxID),
		"share_url":      shareURL,
		"verified":       post.Verified,
		"crisis_support": post.CrisisLevel.NeedsSupport(),
		"message":        "Confession posted successfully",
	})
}

func (s *Server) handlePublicFeed(c echo.Context) error {
	opts := domain.FeedOptions{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
		SortBy: queryDefault(c, "sort_by", "timestamp"),
		Order:  queryDefault(c, "order", "desc"),
	}

	posts, err := s.deps.Posts.ListPublic(c.Request().Context(), opts)
	if err != nil {
		return apperrors.InternalError("failed to load feed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"confessions": posts,
		"count":       len(posts),
		"offset":      opts.Offset,
		"limit":       opts.Limit,
	})
}

func (s *Server) handleGetConfession(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := s.deps.Posts.GetByRef(ctx, c.Param("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return apperrors.NotFoundError("confession not found")
		}
		return apperrors.InternalError("failed to load confession", err)
	}

	if s.shouldCountView(c, post.ID) {
		if err := s.deps.Posts.IncrementViewCount(ctx, post.ID); err != nil {
			slog.Warn("Failed to increment view count", "confession_id", post.ID, "error", err)
		} else {
			post.ViewCount++
		}
	}

	return c.JSON(http.StatusOK, post)
}

// shouldCountView debounces repeated views from the same client. Redis
// trouble fails open so views still count when the cache is down.
func (s *Server) shouldCountView(c echo.Context, postID uuid.UUID) bool {
	if s.deps.ViewDebouncer == nil {
		return true
	}
	count, err := s.deps.ViewDebouncer.ShouldCount(c.Request().Context(), postID, c.RealIP())
	if err != nil {
		slog.Warn("View debounce check failed", "confession_id", postID, "error", err)
		return true
	}
	return count
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func queryDefault(c echo.Context, name, fallback string) string {
	if value := c.QueryParam(name); value != "" {
		return value
	}
	return fallback
}
