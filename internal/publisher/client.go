package publisher

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/Pratiikpy/irys-confession-board/internal/metrics"
)

const (
	uploadPath  = "/upload"
	balancePath = "/balance"
	addressPath = "/address"
)

// Tag is a name/value pair attached to an upload. Tags are queryable on the
// gateway, so their names are part of the public data contract.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Receipt identifies a completed upload.
type Receipt struct {
	TxID        string `json:"tx_id"`
	GatewayURL  string `json:"gateway_url"`
	ExplorerURL string `json:"explorer_url"`
	Timestamp   int64  `json:"timestamp"`
}

// Client talks to the upload sidecar over HTTP.
type Client struct {
	client *resty.Client
}

func NewClient(baseURL string) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:       5 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		IdleConnTimeout:     30 * time.Second,
	})
	client.SetBaseURL(baseURL)
	client.SetTimeout(60 * time.Second)

	return &Client{client: client}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

type uploadRequest struct {
	Data any   `json:"data"`
	Tags []Tag `json:"tags"`
}

type uploadResponse struct {
	Success     bool   `json:"success"`
	TxID        string `json:"tx_id"`
	GatewayURL  string `json:"gateway_url"`
	ExplorerURL string `json:"explorer_url"`
	Timestamp   int64  `json:"timestamp"`
	Error       string `json:"error"`
}

// Publish uploads a payload with the given tags and returns the receipt.
func (c *Client) Publish(ctx context.Context, payload any, tags []Tag) (*Receipt, error) {
	start := time.Now()

	res, err := c.r(ctx).
		SetBody(&uploadRequest{Data: payload, Tags: tags}).
		SetResult(&uploadResponse{}).
		Post(uploadPath)

	metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PublishTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	if res.IsError() {
		metrics.PublishTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("publisher returned status %d", res.StatusCode())
	}

	body := res.Result().(*uploadResponse)
	if !body.Success {
		metrics.PublishTotal.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("publish rejected: %s", body.Error)
	}

	metrics.PublishTotal.WithLabelValues("ok").Inc()
	return &Receipt{
		TxID:        body.TxID,
		GatewayURL:  body.GatewayURL,
		ExplorerURL: body.ExplorerURL,
		Timestamp:   body.Timestamp,
	}, nil
}

type balanceResponse struct {
	Success bool   `json:"success"`
	Balance string `json:"balance"`
	Error   string `json:"error"`
}

// Balance returns the sidecar wallet's funded balance as a decimal string.
func (c *Client) Balance(ctx context.Context) (string, error) {
	res, err := c.r(ctx).
		SetResult(&balanceResponse{}).
		Get(balancePath)
	if err != nil {
		return "", fmt.Errorf("balance request failed: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("publisher returned status %d", res.StatusCode())
	}

	body := res.Result().(*balanceResponse)
	if !body.Success {
		return "", fmt.Errorf("balance lookup failed: %s", body.Error)
	}
	return body.Balance, nil
}

type addressResponse struct {
	Success bool   `json:"success"`
	Address string `json:"address"`
	Error   string `json:"error"`
}

// Address returns the sidecar wallet's public address.
func (c *Client) Address(ctx context.Context) (string, error) {
	res, err := c.r(ctx).
		SetResult(&addressResponse{}).
		Get(addressPath)
	if err != nil {
		return "", fmt.Errorf("address request failed: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("publisher returned status %d", res.StatusCode())
	}

	body := res.Result().(*addressResponse)
	if !body.Success {
		return "", fmt.Errorf("address lookup failed: %s", body.Error)
	}
	return body.Address, nil
}
