package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
)

type searchRequest struct {
	Query    string     `json:"query"`
	Mood     string     `json:"mood"`
	Tags     []string   `json:"tags"`
	Author   string     `json:"author"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	SortBy   string     `json:"sort_by"`
	Order    string     `json:"order"`
}

func (s *Server) handleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	posts, err := s.deps.Posts.Search(c.Request().Context(), domain.SearchQuery{
		Text:     req.Query,
		Mood:     req.Mood,
		Tags:     req.Tags,
		Author:   req.Author,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		SortBy:   req.SortBy,
		Order:    req.Order,
	})
	if err != nil {
		return apperrors.InternalError("search failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"confessions": posts,
		"count":       len(posts),
		"query":       req,
	})
}

func (s *Server) handleTrending(c echo.Context) error {
	ctx := c.Request().Context()
	limit := queryInt(c, "limit", 20)
	timeframe := queryDefault(c, "timeframe", "24h")

	if s.deps.TrendingCache != nil {
		if cached, err := s.deps.TrendingCache.Get(ctx, timeframe, limit); err == nil && cached != nil {
			return trendingResponse(c, cached, timeframe)
		}
	}

	candidates, err := s.deps.Posts.ListSince(ctx, s.deps.Ranker.WindowThreshold(timeframe))
	if err != nil {
		return apperrors.InternalError("failed to load trending candidates", err)
	}

	ranked := s.deps.Ranker.Rank(candidates, limit)

	if s.deps.TrendingCache != nil {
		s.deps.TrendingCache.Set(ctx, timeframe, limit, ranked)
	}
	return trendingResponse(c, ranked, timeframe)
}

func trendingResponse(c echo.Context, posts []domain.Post, timeframe string) error {
	return c.JSON(http.StatusOK, map[string]any{
		"confessions": posts,
		"count":       len(posts),
		"timeframe":   timeframe,
	})
}

func (s *Server) handleTrendingTags(c echo.Context) error {
	limit := queryInt(c, "limit", 20)
	since := s.deps.Clock.Now().Add(-7 * 24 * time.Hour)

	tags, err := s.deps.Posts.TrendingTags(c.Request().Context(), since, limit)
	if err != nil {
		return apperrors.InternalError("failed to load trending tags", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"tags":  tags,
		"count": len(tags),
	})
}

func (s *Server) handleStats(c echo.Context) error {
	since := s.deps.Clock.Now().Add(-24 * time.Hour)

	stats, err := s.deps.Posts.Stats(c.Request().Context(), since)
	if err != nil {
		return apperrors.InternalError("failed to load stats", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"total_confessions":  stats.TotalConfessions,
		"public_confessions": stats.PublicConfessions,
		"total_replies":      stats.TotalReplies,
		"last_24h": map[string]any{
			"confessions": stats.Confessions24h,
			"new_users":   stats.Authors24h,
		},
		"mood_distribution": stats.MoodDistribution,
	})
}
