package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recurhq/aot/internal/loop"
	"github.com/recurhq/aot/internal/state"
	"github.com/recurhq/aot/internal/testutil"
)

func startServer(t *testing.T, store *state.Store) *Server {
	t.Helper()
	srv, err := New(Options{Port: 0, Store: store})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = srv.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = srv.Stop()
	})

	require.Eventually(t, func() bool {
		return srv.ListenAddr() != ""
	}, 2*time.Second, 10*time.Millisecond, "server did not start")
	return srv
}

func TestHandleState(t *testing.T) {
	_, store := testutil.SetupStateDir(t)
	doc := testutil.LinearDocument(2)
	doc.Control.Status = state.StatusRunning
	require.NoError(t, store.Save(doc))

	srv := startServer(t, store)

	resp, err := http.Get(fmt.Sprintf("http://%s/state", srv.ListenAddr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got state.Document
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, state.StatusRunning, got.Control.Status)
	assert.Len(t, got.Atoms, 2)
	assert.Equal(t, testutil.SampleRequest, got.Request)
}

func TestHandleState_MissingDocument(t *testing.T) {
	_, store := testutil.SetupStateDir(t)
	srv := startServer(t, store)

	resp, err := http.Get(fmt.Sprintf("http://%s/state", srv.ListenAddr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBroadcastRoundEvents(t *testing.T) {
	_, store := testutil.SetupStateDir(t)
	require.NoError(t, store.Save(testutil.LinearDocument(1)))
	srv := startServer(t, store)

	url := fmt.Sprintf("ws://%s/events", srv.ListenAddr())
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return len(srv.clients) == 1
	}, 2*time.Second, 10*time.Millisecond, "client never registered")

	srv.Broadcast(loop.RoundEvent{Iteration: 4, Status: "running", Pending: 2, StallCount: 1})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event loop.RoundEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, 4, event.Iteration)
	assert.Equal(t, "running", event.Status)
	assert.Equal(t, 2, event.Pending)
}

func TestBroadcast_NoClients(t *testing.T) {
	_, store := testutil.SetupStateDir(t)
	srv, err := New(Options{Port: 0, Store: store})
	require.NoError(t, err)

	// Must not panic or block without clients.
	srv.Broadcast(loop.RoundEvent{Iteration: 1, Status: "running"})
}
