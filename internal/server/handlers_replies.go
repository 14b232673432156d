package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
	"github.com/Pratiikpy/irys-confession-board/internal/pipeline"
	"github.com/Pratiikpy/irys-confession-board/internal/threads"
)

type createReplyRequest struct {
	Content       string `json:"content"`
	ParentReplyID string `json:"parent_reply_id"`
	Author        string `json:"author"`
	AuthorID      string `json:"author_id"`
	CrisisSupport *bool  `json:"crisis_support"`
}

func (s *Server) handleCreateReply(c echo.Context) error {
	var req createReplyRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	author, err := authorContext(req.Author, req.AuthorID, req.CrisisSupport)
	if err != nil {
		return err
	}

	var parentID *uuid.UUID
	if req.ParentReplyID != "" {
		id, err := uuid.Parse(req.ParentReplyID)
		if err != nil {
			return apperrors.ValidationError("invalid parent_reply_id")
		}
		parentID = &id
	}

	reply, err := s.deps.Pipeline.SubmitReply(c.Request().Context(), pipeline.ReplySubmission{
		ConfessionRef: c.Param("id"),
		ParentReplyID: parentID,
		Content:       req.Content,
		Author:        author,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":        "success",
		"id":            reply.ID.String(),
		"confession_id": reply.ConfessionID.String(),
		"tx_id":         reply.TxID,
		"verified":      reply.Verified,
		"message":       "Reply posted successfully",
	})
}

func (s *Server) handleListReplies(c echo.Context) error {
	ctx := c.Request().Context()

	confession, err := s.deps.Posts.GetByRef(ctx, c.Param("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return apperrors.NotFoundError("confession not found")
		}
		return apperrors.InternalError("failed to load confession", err)
	}

	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 50)

	replies, err := s.deps.Replies.ListByConfession(ctx, confession.ID, offset, limit)
	if err != nil {
		return apperrors.InternalError("failed to load replies", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"replies": threads.Build(replies),
		"count":   len(replies),
		"offset":  offset,
		"limit":   limit,
	})
}
