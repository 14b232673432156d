package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	apperrors "github.com/Pratiikpy/irys-confession-board/internal/errors"
)

func (s *Server) handleNetworkInfo(c echo.Context) error {
	cfg := s.deps.Config
	return c.JSON(http.StatusOK, map[string]string{
		"network":      cfg.PublisherNetwork,
		"gateway_url":  cfg.GatewayBaseURL,
		"rpc_url":      cfg.RPCURL,
		"explorer_url": cfg.ExplorerURL,
		"faucet_url":   cfg.FaucetURL,
	})
}

func (s *Server) handleBalance(c echo.Context) error {
	balance, err := s.deps.Wallet.Balance(c.Request().Context())
	if err != nil {
		return apperrors.ExternalError("failed to fetch balance", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"balance": balance,
	})
}

func (s *Server) handleAddress(c echo.Context) error {
	address, err := s.deps.Wallet.Address(c.Request().Context())
	if err != nil {
		return apperrors.ExternalError("failed to fetch address", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"address": address,
	})
}

func (s *Server) handleVerify(c echo.Context) error {
	ctx := c.Request().Context()
	txID := c.Param("tx_id")

	post, err := s.deps.Posts.GetByTxID(ctx, txID)
	if err == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"verified": true,
			"type":     "confession",
			"data":     post,
		})
	}
	if err != domain.ErrNotFound {
		return apperrors.InternalError("verification lookup failed", err)
	}

	reply, err := s.deps.Replies.GetByTxID(ctx, txID)
	if err == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"verified": true,
			"type":     "reply",
			"data":     reply,
		})
	}
	if err != domain.ErrNotFound {
		return apperrors.InternalError("verification lookup failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"verified": false,
		"message":  "Transaction not found",
	})
}
