package channel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"habitsync/internal/auth"
	"habitsync/pkg/metrics"
)

// State is the connection lifecycle of the push channel.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

const DefaultReconnectWait = 5 * time.Second

// Channel owns the persistent push connection: dial, auth handshake, read
// loop, reconnect on drop. Authentication does not survive a reconnect, so
// the auth frame is re-sent on every transition into open. Inbound frames go
// to the router one at a time, in arrival order.
type Channel struct {
	url           string
	creds         auth.Provider
	router        *Router
	dialer        *websocket.Dialer
	reconnectWait time.Duration
	logger        *zap.Logger

	mu    sync.Mutex
	state State
}

func NewChannel(url string, creds auth.Provider, router *Router, logger *zap.Logger) *Channel {
	return &Channel{
		url:           url,
		creds:         creds,
		router:        router,
		dialer:        websocket.DefaultDialer,
		reconnectWait: DefaultReconnectWait,
		logger:        logger,
		state:         StateDisconnected,
	}
}

func (c *Channel) SetReconnectWait(wait time.Duration) {
	c.reconnectWait = wait
}

func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Channel) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

// Run maintains the connection until ctx is cancelled. There is no anonymous
// push channel: without credentials the connection is never opened.
func (c *Channel) Run(ctx context.Context) error {
	if _, err := c.creds.Credentials(); err != nil {
		return fmt.Errorf("push channel requires credentials: %w", err)
	}

	for {
		if err := c.connectAndServe(ctx); err != nil {
			c.logger.Warn("Push channel connection lost", zap.Error(err))
		}
		c.setState(StateDisconnected)

		select {
		case <-ctx.Done():
			c.logger.Info("Push channel stopped")
			return ctx.Err()
		case <-time.After(c.reconnectWait):
			metrics.IncrementChannelReconnect()
		}
	}
}

// connectAndServe runs one connection lifetime: dial, authenticate, then read
// until the connection drops.
func (c *Channel) connectAndServe(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", c.url, err)
	}
	defer conn.Close()

	c.setState(StateOpen)
	c.logger.Info("Push channel connected", zap.String("url", c.url))

	// Credentials are re-read on every connect; the provider may have
	// refreshed the token since the last session.
	creds, err := c.creds.Credentials()
	if err != nil {
		return fmt.Errorf("credentials unavailable: %w", err)
	}

	frame, err := NewFrame(FrameTypeAuth, AuthPayload{UserID: creds.UserID})
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("auth handshake failed: %w", err)
	}

	c.setState(StateAuthenticated)
	c.logger.Info("Push channel authenticated", zap.String("user_id", creds.UserID))

	// Unblock ReadMessage when ctx is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read failed: %w", err)
		}
		c.router.Dispatch(ctx, raw)
	}
}
