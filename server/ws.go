package server

import (
	"context"
	"sync"

	"github.com/disasterlabs/beacon/live"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// clientFrame is what a websocket client sends to manage its room
// memberships.
type clientFrame struct {
	Action     string `json:"action"`
	DisasterID string `json:"disaster_id"`
}

// wsSession tracks one websocket connection's room memberships. Each joined
// room gets its own forwarding goroutine; a shared write mutex serializes
// writes to the underlying connection since gorilla/websocket supports at
// most one concurrent writer.
type wsSession struct {
	conn    *websocket.Conn
	rooms   *live.RoomChannels
	writeMu sync.Mutex

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func (sess *wsSession) send(v interface{}) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if err := sess.conn.WriteJSON(v); err != nil {
		Logger.Log.Warnf("failed to write websocket frame: %v", err)
	}
}

func (sess *wsSession) join(ctx context.Context, disasterID string) {
	if disasterID == "" {
		return
	}

	sess.mu.Lock()
	if _, ok := sess.cancels[disasterID]; ok {
		sess.mu.Unlock()
		return
	}
	roomCtx, cancel := context.WithCancel(ctx)
	sess.cancels[disasterID] = cancel
	sess.mu.Unlock()

	// The room channel is never closed, so stop forwarding on context
	// termination rather than on channel close.
	ch, _ := sess.rooms.Join(roomCtx, disasterID)
	go func() {
		for {
			select {
			case event := <-ch:
				sess.send(event)
			case <-roomCtx.Done():
				return
			}
		}
	}()
}

func (sess *wsSession) leave(disasterID string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if cancel, ok := sess.cancels[disasterID]; ok {
		cancel()
		delete(sess.cancels, disasterID)
	}
}

// handleWebsocket upgrades the request and serves room membership commands
// until the client disconnects. Clients join a disaster's room either with
// a ?disaster_id= query parameter or by sending {"action": "join",
// "disaster_id": "..."} frames, and receive room events as JSON.
func (s *Server) handleWebsocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		Logger.Log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sess := &wsSession{
		conn:    conn,
		rooms:   s.orchestrator.Rooms(),
		cancels: make(map[string]context.CancelFunc),
	}

	if disasterID := c.Query("disaster_id"); disasterID != "" {
		sess.join(ctx, disasterID)
	}

	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Logger.Log.Warnf("websocket read failed: %v", err)
			}
			return
		}

		switch frame.Action {
		case "join":
			sess.join(ctx, frame.DisasterID)
		case "leave":
			sess.leave(frame.DisasterID)
		default:
			sess.send(gin.H{"error": "unknown action"})
		}
	}
}
