package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// viewDebounceWindow is how long a viewer must wait before the same
// confession counts another view from them.
const viewDebounceWindow = 1 * time.Hour

// ViewDebouncer rate-limits view-count increments per confession and viewer.
type ViewDebouncer struct {
	rdb goredis.Cmdable
}

func NewViewDebouncer(rdb goredis.Cmdable) *ViewDebouncer {
	return &ViewDebouncer{rdb: rdb}
}

// ShouldCount reports whether this viewer's request should increment the
// confession's view counter. The first call per window wins, later calls
// within the window return false.
func (d *ViewDebouncer) ShouldCount(ctx context.Context, confessionID uuid.UUID, viewer string) (bool, error) {
	set, err := d.rdb.SetNX(ctx, viewKey(confessionID, viewer), "1", viewDebounceWindow).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check view debounce: %w", err)
	}
	return set, nil
}

func viewKey(confessionID uuid.UUID, viewer string) string {
	return "view:" + confessionID.String() + ":" + viewer
}
