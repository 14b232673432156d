package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Pratiikpy/irys-confession-board/internal/config"
	"github.com/Pratiikpy/irys-confession-board/internal/database"
	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
	"github.com/Pratiikpy/irys-confession-board/internal/pipeline"
	redisx "github.com/Pratiikpy/irys-confession-board/internal/redis"
	"github.com/Pratiikpy/irys-confession-board/internal/trending"
	"github.com/Pratiikpy/irys-confession-board/internal/votes"
	"github.com/Pratiikpy/irys-confession-board/internal/ws"
)

// Wallet is the slice of the publisher client the API passes through.
type Wallet interface {
	Balance(ctx context.Context) (string, error)
	Address(ctx context.Context) (string, error)
}

// Deps collects everything the server needs. All fields are required
// except TrendingCache and ViewDebouncer, which degrade gracefully to
// uncached behavior when nil.
type Deps struct {
	Config        *config.Config
	Pipeline      *pipeline.Pipeline
	Posts         domain.PostStore
	Replies       domain.ReplyStore
	PostVotes     *votes.Ledger
	ReplyVotes    *votes.Ledger
	Ranker        *trending.Ranker
	TrendingCache *redisx.TrendingCache
	ViewDebouncer *redisx.ViewDebouncer
	Wallet        Wallet
	Hub           *ws.Hub
	DB            *database.DB
	Redis         *redisx.Client
	Clock         clockwork.Clock
}

type Server struct {
	echo *echo.Echo
	deps Deps
}

func NewServer(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	srv := &Server{echo: e, deps: deps}
	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.deps.Config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.deps.Config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
