package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability
	s.echo.GET("/api/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Confessions
	s.echo.POST("/api/confessions", s.handleCreateConfession)
	s.echo.GET("/api/confessions/public", s.handlePublicFeed)
	s.echo.GET("/api/confessions/:id", s.handleGetConfession)
	s.echo.POST("/api/confessions/:id/vote", s.handleConfessionVote)

	// Replies
	s.echo.POST("/api/confessions/:id/replies", s.handleCreateReply)
	s.echo.GET("/api/confessions/:id/replies", s.handleListReplies)
	s.echo.POST("/api/replies/:id/vote", s.handleReplyVote)

	// Discovery
	s.echo.POST("/api/search", s.handleSearch)
	s.echo.GET("/api/trending", s.handleTrending)
	s.echo.GET("/api/tags/trending", s.handleTrendingTags)
	s.echo.GET("/api/analytics/stats", s.handleStats)

	// Permanent storage
	s.echo.GET("/api/publisher/network-info", s.handleNetworkInfo)
	s.echo.GET("/api/publisher/balance", s.handleBalance)
	s.echo.GET("/api/publisher/address", s.handleAddress)
	s.echo.GET("/api/verify/:tx_id", s.handleVerify)

	// Notifications
	s.echo.GET("/ws/:user_id", s.handleWebSocket)
}
