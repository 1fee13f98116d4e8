package http

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"arquiz-service/internal/app"
	"arquiz-service/internal/domain"
	"arquiz-service/internal/game"
	"arquiz-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func TestWebSocketGameFlow(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, NewWSHandler(service, "biology", nil), nil))
	defer server.Close()

	conn := dialGame(t, server, "p1")
	defer conn.Close()

	var started domain.Snapshot
	decode(t, readUntil(t, conn, "started"), &started)
	if started.Question == nil || started.Question.Kind != domain.KindImageTarget {
		t.Fatalf("expected to start on an image target, got %+v", started)
	}

	writeMessage(t, conn, "target", nil)
	var found domain.Event
	decode(t, readUntil(t, conn, "targetFound"), &found)
	if found.Snapshot.Score != 10 {
		t.Fatalf("expected 10 points, got %d", found.Snapshot.Score)
	}

	service.Tick(3 * time.Second)
	var next domain.Event
	decode(t, readUntil(t, conn, "question"), &next)
	if next.Snapshot.CurrentIndex != 1 || next.Snapshot.Question == nil {
		t.Fatalf("expected second question, got %+v", next.Snapshot)
	}

	right := -1
	for i, alt := range next.Snapshot.Question.Alternatives {
		if alt == "right" {
			right = i
		}
	}
	writeMessage(t, conn, "select", map[string]int{"index": right})
	var answered domain.Event
	decode(t, readUntil(t, conn, "correctAnswer"), &answered)
	if answered.Snapshot.Score != 20 || answered.CorrectIndex == nil || *answered.CorrectIndex != right {
		t.Fatalf("expected correct answer worth 20, got %+v", answered)
	}

	for i := 0; i < 6; i++ {
		service.Tick(61 * time.Second)
	}
	var lb domain.Leaderboard
	decode(t, readUntil(t, conn, "gameOver"), &lb)
	if len(lb.Entries) != 4 || lb.Entries[0].Rank != 1 || lb.Entries[0].Score != 20 {
		t.Fatalf("expected player first with 20 points, got %+v", lb.Entries)
	}
}

func TestWebSocketRestartAndSave(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, NewWSHandler(service, "biology", nil), nil))
	defer server.Close()

	conn := dialGame(t, server, "p1")
	defer conn.Close()

	var first domain.Snapshot
	decode(t, readUntil(t, conn, "started"), &first)

	writeMessage(t, conn, "target", nil)
	readUntil(t, conn, "targetFound")

	writeMessage(t, conn, "save", nil)
	var saved domain.SaveData
	decode(t, readUntil(t, conn, "saved"), &saved)
	if saved.Score != 10 {
		t.Fatalf("expected saved score 10, got %+v", saved)
	}

	writeMessage(t, conn, "restart", nil)
	var second domain.Snapshot
	decode(t, readUntil(t, conn, "started"), &second)
	if second.GameID == first.GameID || second.Score != 0 {
		t.Fatalf("expected a fresh game, got %+v", second)
	}

	// Events of the new game still reach the socket.
	writeMessage(t, conn, "target", nil)
	var found domain.Event
	decode(t, readUntil(t, conn, "targetFound"), &found)
	if found.Snapshot.GameID != second.GameID {
		t.Fatalf("expected event from the new game, got %s", found.Snapshot.GameID)
	}
}

func TestWebSocketTutorialAndErrors(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, NewWSHandler(service, "biology", []string{"aim", "answer"}), nil))
	defer server.Close()

	conn := dialGame(t, server, "p1")
	defer conn.Close()
	readUntil(t, conn, "started")

	var page tutorialPage
	writeMessage(t, conn, "tutorial", map[string]string{"action": "next"})
	decode(t, readUntil(t, conn, "tutorial"), &page)
	if page.Index != 1 || page.Page != "answer" || !page.Moved || page.Total != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	writeMessage(t, conn, "tutorial", map[string]string{"action": "next"})
	decode(t, readUntil(t, conn, "tutorial"), &page)
	if page.Index != 1 || page.Moved {
		t.Fatalf("expected to stay on the last page, got %+v", page)
	}

	var failure errorPayload
	writeMessage(t, conn, "gameOver", nil)
	decode(t, readUntil(t, conn, "error"), &failure)
	if failure.Message != domain.ErrGameInProgress.Error() {
		t.Fatalf("expected game in progress, got %q", failure.Message)
	}

	writeMessage(t, conn, "initials", map[string]string{"initials": "toolong"})
	decode(t, readUntil(t, conn, "error"), &failure)
	if failure.Message != domain.ErrInvalidInitials.Error() {
		t.Fatalf("expected invalid initials, got %q", failure.Message)
	}

	writeMessage(t, conn, "dance", nil)
	decode(t, readUntil(t, conn, "error"), &failure)
	if failure.Message != "unsupported message type" {
		t.Fatalf("unexpected error: %q", failure.Message)
	}
}

func TestWebSocketUnknownContent(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, NewWSHandler(service, "biology", nil), nil))
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?playerId=p1&contentId=missing"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var failure errorPayload
	decode(t, readUntil(t, conn, "error"), &failure)
	if failure.Message != domain.ErrContentNotFound.Error() {
		t.Fatalf("expected content error, got %q", failure.Message)
	}
}

func TestWebSocketMissingPlayer(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, NewWSHandler(service, "biology", nil), nil))
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDisconnectRemovesSession(t *testing.T) {
	service := newTestService()
	server := httptest.NewServer(NewRouter(service, NewWSHandler(service, "biology", nil), nil))
	defer server.Close()

	conn := dialGame(t, server, "p1")
	readUntil(t, conn, "started")
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := service.Snapshot(context.Background(), "p1"); err != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected session to be removed after disconnect")
}

func TestReconnectKeepsNewestGame(t *testing.T) {
	service := newTestService()
	ws := NewWSHandler(service, "biology", nil)
	served := make(chan struct{}, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(w, r)
		served <- struct{}{}
	}))
	defer server.Close()

	first := dialGame(t, server, "p1")
	defer first.Close()
	var firstGame domain.Snapshot
	decode(t, readUntil(t, first, "started"), &firstGame)

	second := dialGame(t, server, "p1")
	defer second.Close()
	var secondGame domain.Snapshot
	decode(t, readUntil(t, second, "started"), &secondGame)
	if secondGame.GameID == firstGame.GameID {
		t.Fatalf("expected the second connection to start its own game")
	}

	// The replaced socket no longer drives the player's game.
	writeMessage(t, first, "target", nil)
	var failure errorPayload
	decode(t, readUntil(t, first, "error"), &failure)
	if failure.Message != domain.ErrSessionReplaced.Error() {
		t.Fatalf("expected replaced session error, got %q", failure.Message)
	}
	snap, err := service.Snapshot(context.Background(), "p1")
	if err != nil || snap.Score != 0 || snap.TargetIdentified {
		t.Fatalf("expected the new game untouched, got %+v (%v)", snap, err)
	}

	first.Close()
	select {
	case <-served:
	case <-time.After(5 * time.Second):
		t.Fatalf("first connection did not finish")
	}

	snap, err = service.Snapshot(context.Background(), "p1")
	if err != nil || snap.GameID != secondGame.GameID {
		t.Fatalf("expected game %s to survive the first disconnect, got %+v (%v)", secondGame.GameID, snap, err)
	}

	writeMessage(t, second, "target", nil)
	var found domain.Event
	decode(t, readUntil(t, second, "targetFound"), &found)
	if found.Snapshot.GameID != secondGame.GameID || found.Snapshot.Score != 10 {
		t.Fatalf("expected the second connection to keep playing, got %+v", found.Snapshot)
	}
}

func dialGame(t *testing.T, server *httptest.Server, playerID string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?playerId=" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func writeMessage(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	msg := map[string]any{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil skips messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
}

func decode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func newTestService() *app.GameService {
	content := domain.Content{
		ID:      "biology",
		Targets: []domain.ImageTargetQuestion{{Prompt: "Find the heart", TargetRef: "heart"}},
	}
	for i := 0; i < 4; i++ {
		alternatives := []string{"wrong", "wrong", "wrong"}
		alternatives[i%3] = "right"
		content.MultipleChoice = append(content.MultipleChoice, domain.MultipleChoiceQuestion{
			Prompt:       "Pick the right one",
			Alternatives: alternatives,
			CorrectIndex: i % 3,
		})
	}
	contents := memory.NewContentRepository(memory.NewStaticContentLoader(map[string]domain.Content{
		"biology": content,
	}), time.Minute)
	return app.NewGameService(memory.NewSessionStore(), contents, memory.NewSaveStore(), game.DefaultRules(),
		game.WithRand(rand.New(rand.NewSource(7))))
}
