// Package trending scores and ranks confessions by recent engagement.
package trending

import (
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
)

// Engagement weights. Replies signal more investment than votes, views the
// least.
const (
	replyWeight = 2.0
	viewWeight  = 0.1
)

// Ranker orders posts by engagement score with time decay.
type Ranker struct {
	clock clockwork.Clock
}

func NewRanker(clock clockwork.Clock) *Ranker {
	return &Ranker{clock: clock}
}

// Score computes a post's trending score at the ranker's current time:
// weighted engagement divided by age in hours plus one, so a new post with
// modest engagement outranks an old post with slightly more.
func (r *Ranker) Score(post *domain.Post) float64 {
	return scoreAt(post, r.clock.Now())
}

func scoreAt(post *domain.Post, now time.Time) float64 {
	engagement := float64(post.Upvotes) +
		replyWeight*float64(post.ReplyCount) +
		viewWeight*float64(post.ViewCount)

	ageHours := now.Sub(post.Timestamp).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return engagement / (ageHours + 1)
}

// Rank sorts posts by descending score and truncates to limit. The sort is
// stable, so equally scored posts keep their input order. Scores are
// precomputed at a single instant so the ordering predicate cannot shift
// while the sort runs.
func (r *Ranker) Rank(posts []domain.Post, limit int) []domain.Post {
	now := r.clock.Now()

	type scored struct {
		post  domain.Post
		score float64
	}
	entries := make([]scored, len(posts))
	for i := range posts {
		entries[i] = scored{post: posts[i], score: scoreAt(&posts[i], now)}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].score > entries[j].score
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	ranked := make([]domain.Post, len(entries))
	for i := range entries {
		ranked[i] = entries[i].post
	}
	return ranked
}

// WindowThreshold maps a timeframe name to the oldest timestamp still
// inside the window. Unknown timeframes fall back to 24h.
func (r *Ranker) WindowThreshold(timeframe string) time.Time {
	var window time.Duration
	switch timeframe {
	case "1h":
		window = time.Hour
	case "7d":
		window = 7 * 24 * time.Hour
	case "30d":
		window = 30 * 24 * time.Hour
	default:
		window = 24 * time.Hour
	}
	return r.clock.Now().Add(-window)
}
