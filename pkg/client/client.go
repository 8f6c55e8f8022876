package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shared-canvas/backend/internal/model"
)

// deleteMessage is the literal delete sentinel of the wire protocol.
const deleteMessage = "delete"

const (
	defaultResyncDelay       = time.Second
	defaultSimplifyTolerance = 2.5
	defaultEraseTolerance    = 5.0
)

// Mode selects the pointer gesture interpretation.
type Mode int

const (
	// ModeDraw accumulates strokes.
	ModeDraw Mode = iota
	// ModeErase removes strokes by pointer hit-test.
	ModeErase
)

// Config configures a Client.
type Config struct {
	// ServerURL is the canvas server base URL, e.g. "http://localhost:3000".
	ServerURL string
	// UserID is the identifier stamped on every stroke this client draws.
	UserID string
	// Renderer builds renderable shapes; nil means the headless default.
	Renderer Renderer
	// HTTPClient overrides the client for snapshot and delete calls.
	HTTPClient *http.Client
	// ResyncDelay is the wait between receiving a delete signal and pulling
	// a fresh snapshot, giving the originator's durable mutation time to
	// land. Defaults to one second.
	ResyncDelay time.Duration
	// SimplifyTolerance controls stroke thinning on pointer-up.
	SimplifyTolerance float64
	// EraseTolerance is the hit-test distance in erase mode.
	EraseTolerance float64
}

// Client keeps a local stroke list approximately consistent with the
// server: it submits drawn strokes over the WebSocket, applies pushed
// strokes as they arrive, and resynchronizes via snapshot fetch after
// delete signals.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	wsURL      string
	userID     string
	board      *Board

	resyncDelay       time.Duration
	simplifyTolerance float64
	eraseTolerance    float64

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	mode    Mode
	color   string
	width   float64
	down    bool
	current *model.Stroke
}

// New creates a Client. Connect must be called before strokes flow.
func New(cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, errors.New("server URL is required")
	}
	if cfg.UserID == "" {
		return nil, errors.New("user ID is required")
	}

	base, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	wsBase := *base
	switch base.Scheme {
	case "http":
		wsBase.Scheme = "ws"
	case "https":
		wsBase.Scheme = "wss"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", base.Scheme)
	}
	wsBase.Path = "/ws"

	c := &Client{
		httpClient:        cfg.HTTPClient,
		baseURL:           base,
		wsURL:             wsBase.String(),
		userID:            cfg.UserID,
		board:             NewBoard(cfg.Renderer),
		resyncDelay:       cfg.ResyncDelay,
		simplifyTolerance: cfg.SimplifyTolerance,
		eraseTolerance:    cfg.EraseTolerance,
		color:             "#000000",
		width:             2,
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.resyncDelay <= 0 {
		c.resyncDelay = defaultResyncDelay
	}
	if c.simplifyTolerance <= 0 {
		c.simplifyTolerance = defaultSimplifyTolerance
	}
	if c.eraseTolerance <= 0 {
		c.eraseTolerance = defaultEraseTolerance
	}

	return c, nil
}

// Board returns the local view.
func (c *Client) Board() *Board {
	return c.board
}

// SetMode switches between draw and erase.
func (c *Client) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
}

// SetColor sets the stroke color for subsequent draw gestures.
func (c *Client) SetColor(color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = color
}

// SetWidth sets the stroke width for subsequent draw gestures.
func (c *Client) SetWidth(width float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
}

// Connect dials the sync socket, starts applying pushed events, and pulls
// the initial snapshot.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial sync socket: %w", err)
	}
	c.conn = conn

	go c.readLoop()

	return c.Refresh(ctx)
}

// Close tears down the socket. In-flight HTTP requests are not cancelled.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// readLoop applies pushed events: strokes are appended to the local view;
// a delete signal schedules a delayed full resynchronization.
func (c *Client) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if string(message) == deleteMessage {
			// Wait for the originator's durable mutation to land, then
			// replace the whole local view. Point deletes are not
			// individually broadcast, so this is the only path by which a
			// peer's deletions become visible.
			time.AfterFunc(c.resyncDelay, func() {
				if err := c.Refresh(context.Background()); err != nil {
					log.Printf("Resync after delete failed: %v", err)
				}
			})
			continue
		}

		stroke := &model.Stroke{}
		if err := json.Unmarshal(message, stroke); err != nil {
			log.Printf("Failed to unmarshal pushed stroke: %v", err)
			continue
		}

		c.board.Add(stroke)
	}
}

// PointerDown starts a gesture. In draw mode a new stroke begins
// accumulating at p; in erase mode hit-testing starts on the next move.
func (c *Client) PointerDown(p model.Point) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.down = true
	if c.mode != ModeDraw {
		return
	}

	c.current = &model.Stroke{
		Points: []model.Point{p},
		Color:  c.color,
		Width:  c.width,
		User:   c.userID,
	}
	c.board.Add(c.current)
}

// PointerMove continues a gesture. While drawing it appends a point; while
// erasing it hit-tests the position and, on a hit, removes the stroke
// locally and issues one delete request for its structural attributes.
func (c *Client) PointerMove(ctx context.Context, p model.Point) error {
	c.mu.Lock()
	if !c.down {
		c.mu.Unlock()
		return nil
	}

	if c.mode == ModeErase {
		tolerance := c.eraseTolerance
		c.mu.Unlock()

		stroke, ok := c.board.EraseAt(p, tolerance)
		if !ok {
			return nil
		}
		return c.DeleteStroke(ctx, stroke)
	}

	if c.current != nil {
		c.current.Points = append(c.current.Points, p)
	}
	c.mu.Unlock()
	return nil
}

// PointerUp ends a gesture. A drawn stroke is simplified and submitted
// over the socket; a stroke that simplifies to a single point (a click
// with no drag) is discarded and never submitted.
func (c *Client) PointerUp() error {
	c.mu.Lock()
	c.down = false

	if c.mode != ModeDraw || c.current == nil {
		c.mu.Unlock()
		return nil
	}

	stroke := c.current
	c.current = nil
	tolerance := c.simplifyTolerance
	c.mu.Unlock()

	stroke.Points = Simplify(stroke.Points, tolerance)
	if len(stroke.Points) <= 1 {
		c.board.Remove(stroke)
		return nil
	}
	c.board.Rerender(stroke)

	return c.submit(stroke)
}

// submit sends a stroke over the socket. Fire-and-forget: there is no
// acknowledgment and no retry.
func (c *Client) submit(stroke *model.Stroke) error {
	if c.conn == nil {
		return errors.New("not connected")
	}

	payload, err := json.Marshal(stroke)
	if err != nil {
		return fmt.Errorf("failed to marshal stroke: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// SendDelete sends the live delete notification over the socket. It does
// not mutate the store; pair it with an HTTP delete call.
func (c *Client) SendDelete() error {
	if c.conn == nil {
		return errors.New("not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(deleteMessage))
}

// Refresh fetches the full snapshot and replaces the local view with it.
func (c *Client) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/canvas"), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("snapshot fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("snapshot fetch failed: status %d", resp.StatusCode)
	}

	var strokes []*model.Stroke
	if err := json.NewDecoder(resp.Body).Decode(&strokes); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	c.board.Replace(strokes)
	return nil
}

// ClearOwn deletes every stroke owned by this user and replaces the local
// view with the server's post-delete snapshot. The server notifies live
// peers itself upon the HTTP call.
func (c *Client) ClearOwn(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"userID": c.userID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/clear"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clear failed: status %d", resp.StatusCode)
	}

	var strokes []*model.Stroke
	if err := json.NewDecoder(resp.Body).Decode(&strokes); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	c.board.Replace(strokes)
	return nil
}

// DeleteStroke issues the durable delete for one structural match.
// Deleting a match that no longer exists succeeds as a no-op.
func (c *Client) DeleteStroke(ctx context.Context, stroke *model.Stroke) error {
	body, err := json.Marshal(stroke)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/remove"), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("remove failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remove failed: status %d", resp.StatusCode)
	}

	return nil
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = path
	return u.String()
}
