package votes

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
)

type fakeVoteStore struct {
	votes map[string]*domain.Vote

	createErr error
	switched  int
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{votes: make(map[string]*domain.Vote)}
}

func key(subjectID uuid.UUID, voter string) string {
	return subjectID.String() + "/" + voter
}

func (s *fakeVoteStore) Find(_ context.Context, subjectID uuid.UUID, voter string) (*domain.Vote, error) {
	v, ok := s.votes[key(subjectID, voter)]
	if !ok {
		return nil, nil
	}
	copied := *v
	return &copied, nil
}

func (s *fakeVoteStore) Create(_ context.Context, v *domain.Vote) error {
	if s.createErr != nil {
		return s.createErr
	}
	k := key(v.SubjectID, v.VoterIdentity)
	if _, exists := s.votes[k]; exists {
		return domain.ErrDuplicateVote
	}
	copied := *v
	s.votes[k] = &copied
	return nil
}

func (s *fakeVoteStore) Switch(_ context.Context, v *domain.Vote, newType domain.VoteType, at time.Time) error {
	stored := s.votes[key(v.SubjectID, v.VoterIdentity)]
	stored.VoteType = newType
	stored.Timestamp = at
	s.switched++
	return nil
}

func TestCastFirstVote(t *testing.T) {
	store := newFakeVoteStore()
	ledger := NewLedger(store, "post", clockwork.NewFakeClock())
	subject := uuid.New()

	result, err := ledger.Cast(context.Background(), subject, "0xabc", domain.VoteUp)
	require.NoError(t, err)

	assert.False(t, result.Switched)
	assert.Equal(t, 1, result.UpvoteDelta)
	assert.Equal(t, 0, result.DownvoteDelta)
	assert.Equal(t, domain.VoteUp, result.Vote.VoteType)
	assert.Len(t, store.votes, 1)
}

func TestCastSameTypeConflicts(t *testing.T) {
	store := newFakeVoteStore()
	ledger := NewLedger(store, "post", clockwork.NewFakeClock())
	subject := uuid.New()

	_, err := ledger.Cast(context.Background(), subject, "0xabc", domain.VoteUp)
	require.NoError(t, err)

	_, err = ledger.Cast(context.Background(), subject, "0xabc", domain.VoteUp)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeConflict, apperrors.AsStructuredError(err).Type)
	assert.Equal(t, 0, store.switched)
}

func TestCastOppositeTypeSwitches(t *testing.T) {
	store := newFakeVoteStore()
	clock := clockwork.NewFakeClock()
	ledger := NewLedger(store, "post", clock)
	subject := uuid.New()

	_, err := ledger.Cast(context.Background(), subject, "0xabc", domain.VoteUp)
	require.NoError(t, err)

	clock.Advance(time.Minute)

	result, err := ledger.Cast(context.Background(), subject, "0xabc", domain.VoteDown)
	require.NoError(t, err)

	assert.True(t, result.Switched)
	assert.Equal(t, -1, result.UpvoteDelta)
	assert.Equal(t, 1, result.DownvoteDelta)
	assert.Equal(t, 1, store.switched)

	stored := store.votes[key(subject, "0xabc")]
	assert.Equal(t, domain.VoteDown, stored.VoteType)
	assert.Equal(t, clock.Now(), stored.Timestamp)
}

func TestCastRaceLoserSeesConflict(t *testing.T) {
	// Two concurrent first votes: the store's unique constraint rejects
	// the loser even though Find saw no existing vote.
	store := newFakeVoteStore()
	store.createErr = domain.ErrDuplicateVote
	ledger := NewLedger(store, "post", clockwork.NewFakeClock())

	_, err := ledger.Cast(context.Background(), uuid.New(), "0xabc", domain.VoteUp)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeConflict, apperrors.AsStructuredError(err).Type)
}

func TestCastValidation(t *testing.T) {
	ledger := NewLedger(newFakeVoteStore(), "post", clockwork.NewFakeClock())

	_, err := ledger.Cast(context.Background(), uuid.New(), "0xabc", domain.VoteType("sideways"))
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)

	_, err = ledger.Cast(context.Background(), uuid.New(), "", domain.VoteUp)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.AsStructuredError(err).Type)
}
