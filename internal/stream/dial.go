// AIS Fleet - Vessel Position Ingestion Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aisfleet

package stream

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/aisfleet/internal/config"
	"github.com/tomtom215/aisfleet/internal/models"
)

// defaultWriteTimeout bounds control frame writes when none is configured.
const defaultWriteTimeout = 10 * time.Second

func writeDeadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return time.Now().Add(timeout)
}

// Dial opens a socket to the configured feed URL.
func Dial(ctx context.Context, cfg *config.StreamConfig) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:             http.ProxyFromEnvironment,
		HandshakeTimeout:  cfg.HandshakeTimeout,
		EnableCompression: true,
	}

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	if cfg.ReadLimit > 0 {
		conn.SetReadLimit(cfg.ReadLimit)
	}
	return conn, nil
}

// SendSubscription writes req as a single JSON text frame.
func SendSubscription(conn *websocket.Conn, req *models.SubscriptionRequest, timeout time.Duration) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}
	if err := conn.SetWriteDeadline(writeDeadline(timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write subscription: %w", err)
	}
	return nil
}

// Ping sends a protocol-level ping control frame.
func Ping(conn *websocket.Conn, timeout time.Duration) error {
	return conn.WriteControl(websocket.PingMessage, nil, writeDeadline(timeout))
}

// CloseNormal sends a normal-closure close frame. The socket itself is
// left open for the caller to close.
func CloseNormal(conn *websocket.Conn, timeout time.Duration) error {
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		writeDeadline(timeout),
	)
}
