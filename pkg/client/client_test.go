package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shared-canvas/backend/api/handlers"
	"github.com/shared-canvas/backend/internal/db"
	"github.com/shared-canvas/backend/internal/model"
	"github.com/shared-canvas/backend/internal/repository"
	"github.com/shared-canvas/backend/internal/ws"
)

func TestNewRequiresServerURLAndUser(t *testing.T) {
	if _, err := New(Config{UserID: "alice"}); err == nil {
		t.Errorf("missing server URL should fail")
	}
	if _, err := New(Config{ServerURL: "http://localhost:3000"}); err == nil {
		t.Errorf("missing user ID should fail")
	}
	if _, err := New(Config{ServerURL: "ftp://x", UserID: "alice"}); err == nil {
		t.Errorf("non-http scheme should fail")
	}
}

func TestClickWithoutDragIsDiscarded(t *testing.T) {
	c, err := New(Config{ServerURL: "http://localhost:3000", UserID: "alice"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	p := model.Point{X: 10, Y: 10}
	c.PointerDown(p)
	// Stationary pointer: every sample is the same position.
	c.PointerMove(context.Background(), p)
	c.PointerMove(context.Background(), p)

	// The gesture must be dropped before any submission is attempted, so
	// the absent connection is never touched.
	if err := c.PointerUp(); err != nil {
		t.Fatalf("discarded gesture must not submit: %v", err)
	}
	if c.Board().Len() != 0 {
		t.Errorf("discarded gesture left %d strokes on the board", c.Board().Len())
	}
}

func TestDrawGestureWithoutConnectionFails(t *testing.T) {
	c, err := New(Config{ServerURL: "http://localhost:3000", UserID: "alice"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	c.PointerDown(model.Point{X: 0, Y: 0})
	c.PointerMove(context.Background(), model.Point{X: 50, Y: 0})
	c.PointerMove(context.Background(), model.Point{X: 100, Y: 50})

	if err := c.PointerUp(); err == nil {
		t.Errorf("submitting with no connection should fail")
	}
	// The local view keeps the stroke; only the submission failed.
	if c.Board().Len() != 1 {
		t.Errorf("drawn stroke missing from local view")
	}
}

func TestEraseIssuesExactlyOneDelete(t *testing.T) {
	var removeCalls int32
	var lastBody model.Stroke

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete && r.URL.Path == "/remove" {
			atomic.AddInt32(&removeCalls, 1)
			if err := json.NewDecoder(r.Body).Decode(&lastBody); err != nil {
				t.Errorf("bad remove body: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := New(Config{ServerURL: srv.URL, UserID: "alice"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	target := &model.Stroke{
		Points: []model.Point{{X: 0, Y: 0}, {X: 100, Y: 0}},
		Color:  "#ff00ff",
		Width:  3,
		User:   "bob",
	}
	c.Board().Add(target)

	c.SetMode(ModeErase)
	c.PointerDown(model.Point{X: 50, Y: 2})
	if err := c.PointerMove(context.Background(), model.Point{X: 50, Y: 2}); err != nil {
		t.Fatalf("erase move failed: %v", err)
	}
	// Further passes over the now-empty region must not re-issue.
	if err := c.PointerMove(context.Background(), model.Point{X: 55, Y: 2}); err != nil {
		t.Fatalf("second erase move failed: %v", err)
	}
	if err := c.PointerUp(); err != nil {
		t.Fatalf("erase pointer-up failed: %v", err)
	}

	if n := atomic.LoadInt32(&removeCalls); n != 1 {
		t.Fatalf("expected exactly 1 remove call, got %d", n)
	}
	if lastBody.Color != target.Color || lastBody.User != target.User || lastBody.Width != target.Width {
		t.Errorf("remove body lost structural attributes: %+v", lastBody)
	}
	if c.Board().Len() != 0 {
		t.Errorf("erased stroke still on the local view")
	}
}

func TestRefreshReplacesLocalView(t *testing.T) {
	snapshot := []model.Stroke{
		{Points: []model.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, Color: "#111111", Width: 2, User: "alice"},
		{Points: []model.Point{{X: 2, Y: 2}, {X: 3, Y: 3}}, Color: "#222222", Width: 2, User: "bob"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/canvas" {
			json.NewEncoder(w).Encode(snapshot)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, err := New(Config{ServerURL: srv.URL, UserID: "carol"})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	c.Board().Add(&model.Stroke{Points: []model.Point{{X: 9, Y: 9}}, User: "stale"})

	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if err := c.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}

	got := c.Board().Strokes()
	if len(got) != 2 {
		t.Fatalf("refresh must replace, not append: got %d strokes", len(got))
	}
	if got[0].User != "alice" || got[1].User != "bob" {
		t.Errorf("snapshot order lost: %+v", got)
	}
}

// newSyncServer stands up the full stack: store, hub, WebSocket handler
// and HTTP endpoints, all behind one httptest server.
func newSyncServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.NewTestDB()
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	hub := ws.NewHub()
	t.Cleanup(hub.Close)

	strokes := repository.NewStrokeRepository(database)
	wsHandler := ws.NewHandler(hub, strokes, 1024, 1024)

	r := gin.New()
	handlers.NewCanvasHandler(strokes, hub).RegisterRoutes(r.Group("/"))
	r.GET("/ws", func(c *gin.Context) {
		wsHandler.HandleConnection(c.Writer, c.Request)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func connectedClient(t *testing.T, serverURL, userID string) *Client {
	t.Helper()
	c, err := New(Config{
		ServerURL:   serverURL,
		UserID:      userID,
		ResyncDelay: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create client %s: %v", userID, err)
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect client %s: %v", userID, err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func waitForBoardLen(t *testing.T, c *Client, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.Board().Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("board never reached %d strokes, stuck at %d", want, c.Board().Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestTwoClientsConverge drives the full loop: one client draws and the
// other sees the stroke pushed live; the second erases it and the first
// converges back to empty through delayed resynchronization.
func TestTwoClientsConverge(t *testing.T) {
	srv := newSyncServer(t)

	alice := connectedClient(t, srv.URL, "alice")
	bob := connectedClient(t, srv.URL, "bob")

	alice.PointerDown(model.Point{X: 0, Y: 0})
	alice.PointerMove(context.Background(), model.Point{X: 100, Y: 0})
	alice.PointerMove(context.Background(), model.Point{X: 200, Y: 50})
	if err := alice.PointerUp(); err != nil {
		t.Fatalf("alice failed to submit: %v", err)
	}

	waitForBoardLen(t, bob, 1)
	pushed := bob.Board().Strokes()[0]
	if pushed.User != "alice" {
		t.Errorf("pushed stroke attributed to %q, want alice", pushed.User)
	}

	bob.SetMode(ModeErase)
	bob.PointerDown(model.Point{X: 100, Y: 1})
	if err := bob.PointerMove(context.Background(), model.Point{X: 100, Y: 1}); err != nil {
		t.Fatalf("bob failed to erase: %v", err)
	}
	bob.PointerUp()

	// Alice hears the server's delete signal and resyncs against the
	// post-delete store after her delay.
	waitForBoardLen(t, alice, 0)
	if bob.Board().Len() != 0 {
		t.Errorf("bob's local view should already be empty")
	}
}

// TestClearOwnPropagates verifies that a clear-all call converges every
// live client on the surviving strokes.
func TestClearOwnPropagates(t *testing.T) {
	srv := newSyncServer(t)

	alice := connectedClient(t, srv.URL, "alice")
	bob := connectedClient(t, srv.URL, "bob")

	alice.PointerDown(model.Point{X: 0, Y: 0})
	alice.PointerMove(context.Background(), model.Point{X: 100, Y: 100})
	if err := alice.PointerUp(); err != nil {
		t.Fatalf("alice failed to submit: %v", err)
	}

	bob.PointerDown(model.Point{X: 0, Y: 200})
	bob.PointerMove(context.Background(), model.Point{X: 100, Y: 300})
	if err := bob.PointerUp(); err != nil {
		t.Fatalf("bob failed to submit: %v", err)
	}

	waitForBoardLen(t, alice, 2)
	waitForBoardLen(t, bob, 2)

	if err := alice.ClearOwn(context.Background()); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	// Alice's view is replaced synchronously from the response; bob
	// converges through the delete signal.
	waitForBoardLen(t, alice, 1)
	waitForBoardLen(t, bob, 1)
	if survivor := bob.Board().Strokes()[0]; survivor.User != "bob" {
		t.Errorf("surviving stroke attributed to %q, want bob", survivor.User)
	}
}
