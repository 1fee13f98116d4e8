package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"arquiz-service/internal/app"
	"arquiz-service/internal/domain"
	"arquiz-service/internal/game"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service        *app.GameService
	defaultContent string
	tutorialPages  []string
	upgrader       websocket.Upgrader
}

func NewWSHandler(service *app.GameService, defaultContent string, tutorialPages []string) *WSHandler {
	return &WSHandler{
		service:        service,
		defaultContent: defaultContent,
		tutorialPages:  tutorialPages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Index int `json:"index"`
}

type restartPayload struct {
	ContentID string `json:"contentId"`
}

type initialsPayload struct {
	Initials string `json:"initials"`
}

type tutorialPayload struct {
	Action string `json:"action"`
}

type tutorialPage struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Page  string `json:"page"`
	Moved bool   `json:"moved"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// connection holds the per-socket plumbing: one writer goroutine owns conn writes,
// and one forwarder per subscription relays game events into send.
type connection struct {
	h        *WSHandler
	ctx      context.Context
	playerID string
	gameID   string
	send     chan outboundMessage[any]
	closing  chan struct{}
	forwards sync.WaitGroup
	cancel   func()
}

// ServeWS upgrades the request, starts a game for the player and relays input and events.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	contentID := r.URL.Query().Get("contentId")
	if contentID == "" {
		contentID = h.defaultContent
	}
	if playerID == "" || contentID == "" {
		http.Error(w, "missing playerId or contentId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.WithoutCancel(r.Context())
	started, err := h.service.NewGame(ctx, playerID, contentID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	c := &connection{
		h:        h,
		ctx:      ctx,
		playerID: playerID,
		gameID:   started.GameID,
		send:     make(chan outboundMessage[any], 16),
		closing:  make(chan struct{}),
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		failed := false
		for msg := range c.send {
			if failed {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				failed = true
			}
		}
	}()

	c.send <- outboundMessage[any]{Type: "started", Payload: started}
	if err := c.subscribe(); err != nil {
		c.sendError(err)
	}

	tutorial := game.NewTutorial(h.tutorialPages)
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		c.handle(inbound, tutorial)
	}

	if c.cancel != nil {
		c.cancel()
	}
	close(c.closing)
	c.forwards.Wait()
	close(c.send)
	<-writerDone
	h.service.Leave(ctx, playerID, c.gameID)
}

func (c *connection) handle(inbound inboundMessage, tutorial *game.Tutorial) {
	svc := c.h.service
	if inbound.Type != "tutorial" && !c.current() {
		c.sendError(domain.ErrSessionReplaced)
		return
	}
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.sendError(errInvalidPayload("select"))
			return
		}
		if _, _, err := svc.SelectAlternative(c.ctx, c.playerID, payload.Index); err != nil {
			c.sendError(err)
		}
	case "target":
		if _, _, err := svc.IdentifyTarget(c.ctx, c.playerID); err != nil {
			c.sendError(err)
		}
	case "pause":
		if err := svc.Pause(c.ctx, c.playerID); err != nil {
			c.sendError(err)
		}
	case "resume":
		if err := svc.Resume(c.ctx, c.playerID); err != nil {
			c.sendError(err)
		}
	case "restart":
		var payload restartPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				c.sendError(errInvalidPayload("restart"))
				return
			}
		}
		contentID := payload.ContentID
		if contentID == "" {
			contentID = c.h.defaultContent
		}
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		started, err := svc.NewGame(c.ctx, c.playerID, contentID)
		if err != nil {
			c.sendError(err)
			return
		}
		c.gameID = started.GameID
		c.send <- outboundMessage[any]{Type: "started", Payload: started}
		if err := c.subscribe(); err != nil {
			c.sendError(err)
		}
	case "save":
		data, err := svc.Save(c.ctx, c.playerID)
		if err != nil {
			c.sendError(err)
			return
		}
		c.send <- outboundMessage[any]{Type: "saved", Payload: data}
	case "initials":
		var payload initialsPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			c.sendError(errInvalidPayload("initials"))
			return
		}
		if err := svc.SetInitials(c.ctx, c.playerID, payload.Initials); err != nil {
			c.sendError(err)
		}
	case "gameOver":
		lb, err := svc.GameOver(c.ctx, c.playerID)
		if err != nil {
			c.sendError(err)
			return
		}
		c.send <- outboundMessage[any]{Type: "gameOver", Payload: lb}
	case "tutorial":
		var payload tutorialPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				c.sendError(errInvalidPayload("tutorial"))
				return
			}
		}
		moved := false
		switch payload.Action {
		case "next":
			moved = tutorial.Next()
		case "prev":
			moved = tutorial.Prev()
		case "", "current":
		default:
			c.sendError(errInvalidPayload("tutorial"))
			return
		}
		index, page := tutorial.Current()
		c.send <- outboundMessage[any]{Type: "tutorial", Payload: tutorialPage{
			Index: index,
			Total: tutorial.Len(),
			Page:  page,
			Moved: moved,
		}}
	default:
		c.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}

// subscribe attaches to the player's current session and forwards its events until the
// session closes or the socket goes away. A finished game also pushes the leaderboard.
func (c *connection) subscribe() error {
	updates, cancel, err := c.h.service.Subscribe(c.ctx, c.playerID)
	if err != nil {
		return err
	}
	c.cancel = cancel

	c.forwards.Add(1)
	go func() {
		defer c.forwards.Done()
		for {
			select {
			case ev, ok := <-updates:
				if !ok {
					return
				}
				if !c.deliver(outboundMessage[any]{Type: string(ev.Type), Payload: ev}) {
					return
				}
				if ev.Type != domain.EventFinished {
					continue
				}
				if id, ok := c.h.service.CurrentGame(c.ctx, c.playerID); !ok || id != ev.Snapshot.GameID {
					continue
				}
				lb, err := c.h.service.GameOver(c.ctx, c.playerID)
				if err != nil {
					log.Printf("player %s: leaderboard unavailable: %v", c.playerID, err)
					continue
				}
				if !c.deliver(outboundMessage[any]{Type: "gameOver", Payload: lb}) {
					return
				}
			case <-c.closing:
				return
			}
		}
	}()
	return nil
}

// current reports whether the player's live game is still the one this socket started.
func (c *connection) current() bool {
	id, ok := c.h.service.CurrentGame(c.ctx, c.playerID)
	return ok && id == c.gameID
}

func (c *connection) deliver(msg outboundMessage[any]) bool {
	select {
	case c.send <- msg:
		return true
	case <-c.closing:
		return false
	}
}

func (c *connection) sendError(err error) {
	c.send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
}

func errInvalidPayload(kind string) error {
	return fmt.Errorf("invalid %s payload", kind)
}
