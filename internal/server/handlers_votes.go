package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
	"github.com/Pratiikpy/irys-confession-board/internal/ws"
)

type voteRequest struct {
	VoteType    string `json:"vote_type"`
	UserAddress string `json:"user_address"`
}

func (r *voteRequest) voter() string {
	if r.UserAddress == "" {
		return domain.AnonymousAuthor
	}
	return r.UserAddress
}

func (s *Server) handleConfessionVote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	voteType := domain.VoteType(req.VoteType)
	if !voteType.Valid() {
		return apperrors.ValidationError("vote_type must be upvote or downvote")
	}

	ctx := c.Request().Context()

	confession, err := s.deps.Posts.GetByRef(ctx, c.Param("id"))
	if err != nil {
		if err == domain.ErrNotFound {
			return apperrors.NotFoundError("confession not found")
		}
		return apperrors.InternalError("failed to load confession", err)
	}

	if _, err := s.deps.PostVotes.Cast(ctx, confession.ID, req.voter(), voteType); err != nil {
		return err
	}

	s.deps.Hub.Broadcast(ws.NewVoteUpdateMessage(confession.ID.String(), voteType))

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("%s recorded", voteType),
	})
}

func (s *Server) handleReplyVote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	voteType := domain.VoteType(req.VoteType)
	if !voteType.Valid() {
		return apperrors.ValidationError("vote_type must be upvote or downvote")
	}

	replyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid reply id")
	}

	ctx := c.Request().Context()

	reply, err := s.deps.Replies.GetByID(ctx, replyID)
	if err != nil {
		if err == domain.ErrNotFound {
			return apperrors.NotFoundError("reply not found")
		}
		return apperrors.InternalError("failed to load reply", err)
	}

	if _, err := s.deps.ReplyVotes.Cast(ctx, reply.ID, req.voter(), voteType); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":  "success",
		"message": fmt.Sprintf("%s recorded", voteType),
	})
}
