package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

// postColumns must match the Scan order in scanPost.
const postColumns = `id, tx_id, content, is_public, author, author_id, created_at,
	upvotes, downvotes, reply_count, view_count, gateway_url, verified,
	tags, mood, crisis_level, mod_flagged, mod_reviewed, mod_approved`

// PostRepo implements domain.PostStore backed by PostgreSQL.
type PostRepo struct {
	db *DB
}

func NewPostRepo(db *DB) *PostRepo {
	return &PostRepo{db: db}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	err := row.Scan(
		&p.ID, &p.TxID, &p.Content, &p.IsPublic, &p.Author, &p.AuthorID, &p.Timestamp,
		&p.Upvotes, &p.Downvotes, &p.ReplyCount, &p.ViewCount, &p.GatewayURL, &p.Verified,
		&p.Tags, &p.Mood, &p.CrisisLevel, &p.Moderation.Flagged, &p.Moderation.Reviewed, &p.Moderation.Approved,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPosts(rows pgx.Rows) ([]domain.Post, error) {
	defer rows.Close()
	var posts []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (r *PostRepo) Insert(ctx context.Context, p *domain.Post) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO posts (id, tx_id, content, is_public, author, author_id, created_at,
			upvotes, downvotes, reply_count, view_count, gateway_url, verified,
			tags, mood, crisis_level, mod_flagged, mod_reviewed, mod_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, p.ID, p.TxID, p.Content, p.IsPublic, p.Author, p.AuthorID, p.Timestamp,
		p.Upvotes, p.Downvotes, p.ReplyCount, p.ViewCount, p.GatewayURL, p.Verified,
		p.Tags, p.Mood, p.CrisisLevel, p.Moderation.Flagged, p.Moderation.Reviewed, p.Moderation.Approved)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByRef resolves a post by its id or tx_id, mirroring the API contract
// that accepts either identifier.
func (r *PostRepo) GetByRef(ctx context.Context, ref string) (*domain.Post, error) {
	post, err := scanPost(r.db.Pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE tx_id = $1 OR id::text = $1`, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepo) GetByTxID(ctx context.Context, txID string) (*domain.Post, error) {
	post, err := scanPost(r.db.Pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts WHERE tx_id = $1`, txID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

// feed sort fields are whitelisted to prevent ORDER BY injection.
var feedSortColumns = map[string]string{
	"timestamp": "created_at",
	"upvotes":   "upvotes",
}

func orderClause(sortBy, order string) string {
	column, ok := feedSortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}

func (r *PostRepo) ListPublic(ctx context.Context, opts domain.FeedOptions) ([]domain.Post, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE is_public = TRUE AND mod_approved = TRUE
		`+orderClause(opts.SortBy, opts.Order)+`
		OFFSET $1 LIMIT $2
	`, opts.Offset, opts.Limit)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (r *PostRepo) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Post, error) {
	where := "is_public = TRUE AND mod_approved = TRUE"
	args := []any{}

	addCondition := func(condition string, value any) {
		args = append(args, value)
		where += fmt.Sprintf(" AND "+condition, len(args))
	}

	if q.Text != "" {
		addCondition("content ILIKE $%d", "%"+q.Text+"%")
	}
	if q.Mood != "" {
		addCondition("mood = $%d", q.Mood)
	}
	if len(q.Tags) > 0 {
		addCondition("tags && $%d", q.Tags)
	}
	if q.Author != "" {
		addCondition("author = $%d", q.Author)
	}
	if q.DateFrom != nil {
		addCondition("created_at >= $%d", *q.DateFrom)
	}
	if q.DateTo != nil {
		addCondition("created_at <= $%d", *q.DateTo)
	}

	limit := q.Limit
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT `+postColumns+` FROM posts WHERE %s %s LIMIT $%d`,
		where, orderClause(q.SortBy, q.Order), len(args))

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (r *PostRepo) ListSince(ctx context.Context, since time.Time) ([]domain.Post, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE is_public = TRUE AND mod_approved = TRUE AND created_at >= $1
		ORDER BY created_at ASC
	`, since)
	if err != nil {
		return nil, err
	}
	return collectPosts(rows)
}

func (r *PostRepo) IncrementReplyCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE posts SET reply_count = reply_count + 1 WHERE id = $1`, id)
	return err
}

func (r *PostRepo) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE posts SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

func (r *PostRepo) TrendingTags(ctx context.Context, since time.Time, limit int) ([]domain.TagCount, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT tag, COUNT(*) AS count
		FROM posts, unnest(tags) AS tag
		WHERE is_public = TRUE AND mod_approved = TRUE AND created_at >= $1
		GROUP BY tag
		ORDER BY count DESC
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []domain.TagCount
	for rows.Next() {
		var tc domain.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

func (r *PostRepo) Stats(ctx context.Context, since time.Time) (*domain.PlatformStats, error) {
	var stats domain.PlatformStats

	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_public),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(DISTINCT author) FILTER (WHERE created_at >= $1)
		FROM posts
	`, since).Scan(&stats.TotalConfessions, &stats.PublicConfessions, &stats.Confessions24h, &stats.Authors24h)
	if err != nil {
		return nil, err
	}

	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM replies`).Scan(&stats.TotalReplies); err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT mood, COUNT(*) AS count
		FROM posts
		WHERE mood <> ''
		GROUP BY mood
		ORDER BY count DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var mc domain.MoodCount
		if err := rows.Scan(&mc.Mood, &mc.Count); err != nil {
			return nil, err
		}
		stats.MoodDistribution = append(stats.MoodDistribution, mc)
	}
	return &stats, rows.Err()
}
