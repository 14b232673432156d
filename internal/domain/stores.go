package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FeedOptions controls public feed pagination and ordering.
type FeedOptions struct {
	Limit  int
	Offset int
	SortBy string // "timestamp" or "upvotes"
	Order  string // "asc" or "desc"
}

// SearchQuery filters the public confession set.
type SearchQuery struct {
	Text     string
	Mood     string
	Tags     []string
	Author   string
	DateFrom *time.Time
	DateTo   *time.Time
	SortBy   string
	Order    string
	Limit    int
}

// PlatformStats is the aggregate snapshot served by the analytics endpoint.
type PlatformStats struct {
	TotalConfessions  int         `json:"total_confessions"`
	PublicConfessions int         `json:"public_confessions"`
	TotalReplies      int         `json:"total_replies"`
	Confessions24h    int         `json:"confessions_24h"`
	Authors24h        int         `json:"authors_24h"`
	MoodDistribution  []MoodCount `json:"mood_distribution"`
}

// PostStore is the posts collection. Implementations must make counter
// increments atomic per row.
type PostStore interface {
	Insert(ctx context.Context, p *Post) error
	// GetByRef resolves a post by its id or tx_id.
	GetByRef(ctx context.Context, ref string) (*Post, error)
	GetByTxID(ctx context.Context, txID string) (*Post, error)
	// ListPublic returns the public feed, excluding posts with
	// moderation.approved = false.
	ListPublic(ctx context.Context, opts FeedOptions) ([]Post, error)
	Search(ctx context.Context, q SearchQuery) ([]Post, error)
	// ListSince returns public, non-unapproved posts created at or after
	// the threshold, in timestamp-ascending store order.
	ListSince(ctx context.Context, since time.Time) ([]Post, error)
	IncrementReplyCount(ctx context.Context, id uuid.UUID) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	TrendingTags(ctx context.Context, since time.Time, limit int) ([]TagCount, error)
	Stats(ctx context.Context, since time.Time) (*PlatformStats, error)
}

// ReplyStore is the replies collection.
type ReplyStore interface {
	Insert(ctx context.Context, r *Reply) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reply, error)
	GetByTxID(ctx context.Context, txID string) (*Reply, error)
	// ListByConfession returns replies in timestamp-ascending order with
	// skip/limit pagination.
	ListByConfession(ctx context.Context, confessionID uuid.UUID, offset, limit int) ([]Reply, error)
}

// VoteStore is one vote collection (post votes or reply votes) together
// with its subject counters. Create and Switch apply the vote row change
// and the subject's counter delta atomically; a crash cannot leave one
// without the other.
type VoteStore interface {
	// Find returns the existing vote for (subject, voter), or nil.
	Find(ctx context.Context, subjectID uuid.UUID, voter string) (*Vote, error)
	// Create inserts the vote and increments the matching counter.
	// Returns ErrDuplicateVote if (subject, voter) already exists.
	Create(ctx context.Context, v *Vote) error
	// Switch flips an existing vote to newType and applies the -1/+1
	// counter deltas.
	Switch(ctx context.Context, v *Vote, newType VoteType, at time.Time) error
}
