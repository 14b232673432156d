package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

// replyColumns must match the Scan order in scanReply.
const replyColumns = `id, confession_id, parent_reply_id, content, author, author_id,
	created_at, upvotes, downvotes, tx_id, verified, crisis_level,
	mod_flagged, mod_reviewed, mod_approved`

// ReplyRepo implements domain.ReplyStore backed by PostgreSQL.
type ReplyRepo struct {
	db *DB
}

func NewReplyRepo(db *DB) *ReplyRepo {
	return &ReplyRepo{db: db}
}

func scanReply(row pgx.Row) (*domain.Reply, error) {
	var rep domain.Reply
	err := row.Scan(
		&rep.ID, &rep.ConfessionID, &rep.ParentReplyID, &rep.Content, &rep.Author, &rep.AuthorID,
		&rep.Timestamp, &rep.Upvotes, &rep.Downvotes, &rep.TxID, &rep.Verified, &rep.CrisisLevel,
		&rep.Moderation.Flagged, &rep.Moderation.Reviewed, &rep.Moderation.Approved,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReplyRepo) Insert(ctx context.Context, rep *domain.Reply) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO replies (id, confession_id, parent_reply_id, content, author, author_id,
			created_at, upvotes, downvotes, tx_id, verified, crisis_level,
			mod_flagged, mod_reviewed, mod_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, rep.ID, rep.ConfessionID, rep.ParentReplyID, rep.Content, rep.Author, rep.AuthorID,
		rep.Timestamp, rep.Upvotes, rep.Downvotes, rep.TxID, rep.Verified, rep.CrisisLevel,
		rep.Moderation.Flagged, rep.Moderation.Reviewed, rep.Moderation.Approved)
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}
	return nil
}

func (r *ReplyRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reply, error) {
	rep, err := scanReply(r.db.Pool.QueryRow(ctx,
		`SELECT `+replyColumns+` FROM replies WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *ReplyRepo) GetByTxID(ctx context.Context, txID string) (*domain.Reply, error) {
	rep, err := scanReply(r.db.Pool.QueryRow(ctx,
		`SELECT `+replyColumns+` FROM replies WHERE tx_id = $1 AND tx_id <> ''`, txID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

func (r *ReplyRepo) ListByConfession(ctx context.Context, confessionID uuid.UUID, offset, limit int) ([]domain.Reply, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+replyColumns+`
		FROM replies
		WHERE confession_id = $1
		ORDER BY created_at ASC
		OFFSET $2 LIMIT $3
	`, confessionID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var replies []domain.Reply
	for rows.Next() {
		rep, err := scanReply(rows)
		if err != nil {
			return nil, err
		}
		replies = append(replies, *rep)
	}
	return replies, rows.Err()
}
