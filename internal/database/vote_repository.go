package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

const uniqueViolation = "23505"

// VoteRepo implements domain.VoteStore for one vote collection and its
// subject table. Create and Switch run the vote row change and the counter
// delta in a single transaction so neither can be observed without the
// other.
type VoteRepo struct {
	db           *DB
	voteTable    string
	subjectTable string
}

// NewPostVoteRepo stores confession votes against the posts table.
func NewPostVoteRepo(db *DB) *VoteRepo {
	return &VoteRepo{db: db, voteTable: "votes", subjectTable: "posts"}
}

// NewReplyVoteRepo stores reply votes against the replies table.
func NewReplyVoteRepo(db *DB) *VoteRepo {
	return &VoteRepo{db: db, voteTable: "reply_votes", subjectTable: "replies"}
}

func (r *VoteRepo) Find(ctx context.Context, subjectID uuid.UUID, voter string) (*domain.Vote, error) {
	var v domain.Vote
	err := r.db.Pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT id, subject_id, voter_identity, vote_type, created_at
		FROM %s
		WHERE subject_id = $1 AND voter_identity = $2
	`, r.voteTable), subjectID, voter).Scan(&v.ID, &v.SubjectID, &v.VoterIdentity, &v.VoteType, &v.Timestamp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func counterColumn(vt domain.VoteType) string {
	if vt == domain.VoteDown {
		return "downvotes"
	}
	return "upvotes"
}

func (r *VoteRepo) Create(ctx context.Context, v *domain.Vote) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, subject_id, voter_identity, vote_type, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.voteTable), v.ID, v.SubjectID, v.VoterIdentity, v.VoteType, v.Timestamp)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateVote
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	column := counterColumn(v.VoteType)
	_, err = tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET %s = %s + 1 WHERE id = $1
	`, r.subjectTable, column, column), v.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", column, err)
	}

	return tx.Commit(ctx)
}

func (r *VoteRepo) Switch(ctx context.Context, v *domain.Vote, newType domain.VoteType, at time.Time) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET vote_type = $1, created_at = $2 WHERE id = $3
	`, r.voteTable), newType, at, v.ID)
	if err != nil {
		return fmt.Errorf("failed to update vote: %w", err)
	}

	oldColumn := counterColumn(v.VoteType)
	newColumn := counterColumn(newType)
	_, err = tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET %s = %s - 1, %s = %s + 1 WHERE id = $1
	`, r.subjectTable, oldColumn, oldColumn, newColumn, newColumn), v.SubjectID)
	if err != nil {
		return fmt.Errorf("failed to switch counters: %w", err)
	}

	return tx.Commit(ctx)
}
