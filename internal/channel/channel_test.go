package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"habitsync/internal/auth"
)

type staticCreds struct {
	creds auth.Credentials
	err   error
}

func (s staticCreds) Credentials() (auth.Credentials, error) {
	return s.creds, s.err
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// pushServer is a minimal stand-in for the server side of the push protocol:
// it expects the auth frame first, reports it, and then follows the scripted
// per-connection behavior.
type pushServer struct {
	t       *testing.T
	auths   chan string
	serve   func(conn *websocket.Conn)
	httpSrv *httptest.Server
}

func newPushServer(t *testing.T, serve func(conn *websocket.Conn)) *pushServer {
	s := &pushServer{t: t, auths: make(chan string, 16), serve: serve}
	s.httpSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		require.Equal(t, FrameTypeAuth, frame.Type)
		var payload AuthPayload
		require.NoError(t, json.Unmarshal(frame.Data, &payload))
		s.auths <- payload.UserID

		if s.serve != nil {
			s.serve(conn)
		}
	}))
	t.Cleanup(s.httpSrv.Close)
	return s
}

func (s *pushServer) url() string {
	return "ws" + strings.TrimPrefix(s.httpSrv.URL, "http")
}

func TestChannelAuthenticatesOnConnect(t *testing.T) {
	received := make(chan string, 1)

	srv := newPushServer(t, func(conn *websocket.Conn) {
		frame, err := NewFrame(FrameTypeReminder, ReminderPayload{HabitID: "h1", HabitName: "Read", Frequency: "daily"})
		require.NoError(t, err)
		require.NoError(t, conn.WriteJSON(frame))
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	router := NewRouter(zaptest.NewLogger(t))
	router.Register(FrameTypeReminder, func(ctx context.Context, data json.RawMessage) error {
		var p ReminderPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		received <- p.HabitID
		return nil
	})

	creds := staticCreds{creds: auth.Credentials{UserID: "user-123"}}
	ch := NewChannel(srv.url(), creds, router, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	select {
	case userID := <-srv.auths:
		assert.Equal(t, "user-123", userID)
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the auth frame")
	}

	select {
	case habitID := <-received:
		assert.Equal(t, "h1", habitID)
	case <-time.After(2 * time.Second):
		t.Fatal("router never saw the reminder frame")
	}

	assert.Equal(t, StateAuthenticated, ch.State())
}

func TestChannelReauthenticatesAfterReconnect(t *testing.T) {
	// Server drops every connection right after the handshake; each new
	// connection must redo it, authentication does not survive a reconnect.
	srv := newPushServer(t, nil)

	creds := staticCreds{creds: auth.Credentials{UserID: "user-123"}}
	ch := NewChannel(srv.url(), creds, NewRouter(zaptest.NewLogger(t)), zaptest.NewLogger(t))
	ch.SetReconnectWait(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ch.Run(ctx)

	for i := 0; i < 2; i++ {
		select {
		case userID := <-srv.auths:
			assert.Equal(t, "user-123", userID)
		case <-time.After(2 * time.Second):
			t.Fatalf("auth handshake %d never arrived", i+1)
		}
	}
}

func TestChannelRefusesToRunWithoutCredentials(t *testing.T) {
	creds := staticCreds{err: assert.AnError}
	ch := NewChannel("ws://localhost:0/ws", creds, NewRouter(zaptest.NewLogger(t)), zaptest.NewLogger(t))

	err := ch.Run(context.Background())

	// No anonymous push channel: the connection is never opened.
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, ch.State())
}

func TestChannelStopsOnContextCancel(t *testing.T) {
	srv := newPushServer(t, func(conn *websocket.Conn) {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	creds := staticCreds{creds: auth.Credentials{UserID: "user-123"}}
	ch := NewChannel(srv.url(), creds, NewRouter(zaptest.NewLogger(t)), zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ch.Run(ctx) }()

	select {
	case <-srv.auths:
	case <-time.After(2 * time.Second):
		t.Fatal("channel never connected")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop on cancel")
	}
}
