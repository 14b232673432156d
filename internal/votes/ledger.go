// Package votes implements the one-vote-per-identity ledger. Each voter
// holds at most one vote per subject; casting the opposite type switches
// the existing vote, casting the same type again is a conflict.
package votes

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
	"github.com/Pratiikpy/irys-confession-board/internal/metrics"
)

// Result describes the counter movement a cast produced. Deltas are applied
// by the store atomically with the vote row change; they are echoed here so
// callers can broadcast updated totals without re-reading the subject.
type Result struct {
	Vote          *domain.Vote
	Switched      bool
	UpvoteDelta   int
	DownvoteDelta int
}

// Ledger applies the vote state machine on top of a VoteStore.
type Ledger struct {
	store domain.VoteStore
	kind  string
	clock clockwork.Clock
}

// NewLedger creates a ledger over one vote collection. kind labels metrics
// ("post" or "reply").
func NewLedger(store domain.VoteStore, kind string, clock clockwork.Clock) *Ledger {
	return &Ledger{store: store, kind: kind, clock: clock}
}

// Cast records a vote by voter on the subject. Repeating the same vote type
// is a conflict; casting the opposite type switches the vote in place.
func (l *Ledger) Cast(ctx context.Context, subjectID uuid.UUID, voter string, voteType domain.VoteType) (*Result, error) {
	if !voteType.Valid() {
		return nil, apperrors.ValidationError(fmt.Sprintf("invalid vote type %q", voteType))
	}
	if voter == "" {
		return nil, apperrors.ValidationError("voter identity is required")
	}

	existing, err := l.store.Find(ctx, subjectID, voter)
	if err != nil {
		return nil, apperrors.InternalError("failed to look up vote", err)
	}

	if existing == nil {
		return l.create(ctx, subjectID, voter, voteType)
	}
	if existing.VoteType == voteType {
		metrics.VotesTotal.WithLabelValues(l.kind, "duplicate").Inc()
		return nil, apperrors.ConflictError("already voted")
	}
	return l.switchVote(ctx, existing, voteType)
}

func (l *Ledger) create(ctx context.Context, subjectID uuid.UUID, voter string, voteType domain.VoteType) (*Result, error) {
	vote := &domain.Vote{
		ID:            uuid.New(),
		SubjectID:     subjectID,
		VoterIdentity: voter,
		VoteType:      voteType,
		Timestamp:     l.clock.Now(),
	}

	err := l.store.Create(ctx, vote)
	if err != nil {
		// A concurrent cast by the same voter won the unique index race.
		if err == domain.ErrDuplicateVote {
			metrics.VotesTotal.WithLabelValues(l.kind, "duplicate").Inc()
			return nil, apperrors.ConflictError("already voted")
		}
		return nil, apperrors.InternalError("failed to record vote", err)
	}

	metrics.VotesTotal.WithLabelValues(l.kind, "created").Inc()

	result := &Result{Vote: vote}
	if voteType == domain.VoteUp {
		result.UpvoteDelta = 1
	} else {
		result.DownvoteDelta = 1
	}
	return result, nil
}

func (l *Ledger) switchVote(ctx context.Context, existing *domain.Vote, newType domain.VoteType) (*Result, error) {
	now := l.clock.Now()
	if err := l.store.Switch(ctx, existing, newType, now); err != nil {
		return nil, apperrors.InternalError("failed to switch vote", err)
	}

	metrics.VotesTotal.WithLabelValues(l.kind, "switched").Inc()

	result := &Result{Vote: existing, Switched: true}
	if newType == domain.VoteUp {
		result.UpvoteDelta = 1
		result.DownvoteDelta = -1
	} else {
		result.UpvoteDelta = -1
		result.DownvoteDelta = 1
	}

	existing.VoteType = newType
	existing.Timestamp = now
	return result, nil
}
