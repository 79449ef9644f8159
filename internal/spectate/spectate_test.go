package spectate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vovakirdan/nird-snake/internal/games/snake"
	"github.com/vovakirdan/nird-snake/internal/metrics"
	"github.com/vovakirdan/nird-snake/internal/session"
	"github.com/vovakirdan/nird-snake/internal/storage"
)

type fakeRounds struct {
	gotDifficulty string
	gotLimit      int
}

func (f *fakeRounds) TopRounds(difficulty string, limit int) ([]storage.Round, error) {
	f.gotDifficulty = difficulty
	f.gotLimit = limit
	return []storage.Round{{Difficulty: "expert", Score: 90, Liberated: 9}}, nil
}

func testSnapshot() snake.Snapshot {
	return snake.New(snake.MustDifficulty(snake.Beginner), 0, 1).Snapshot()
}

func newTestRouter(t *testing.T, hub *Hub) (http.Handler, *session.Adapter, *fakeRounds) {
	t.Helper()
	scores := session.NewAdapter(session.NewMemoryKV(), nil)
	rounds := &fakeRounds{}
	reg := prometheus.NewRegistry()
	r := NewRouter(RouterConfig{
		Hub:     hub,
		Scores:  scores,
		Rounds:  rounds,
		Metrics: metrics.New(reg, reg),
	})
	return r, scores, rounds
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLeaderboardEndpoint(t *testing.T) {
	r, scores, _ := newTestRouter(t, NewHub(nil, nil, nil))
	scores.SaveHighScore(120)
	scores.RecordScore(40)
	scores.RecordScore(120)

	rec := get(t, r, "/api/leaderboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp leaderboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.HighScore != 120 {
		t.Errorf("high score = %d, want 120", resp.HighScore)
	}
	if len(resp.Leaderboard) != 2 || resp.Leaderboard[0] != 120 || resp.Leaderboard[1] != 40 {
		t.Errorf("leaderboard = %v", resp.Leaderboard)
	}
}

func TestRoundsEndpoint(t *testing.T) {
	r, _, rounds := newTestRouter(t, NewHub(nil, nil, nil))

	rec := get(t, r, "/api/rounds?difficulty=expert&limit=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rounds.gotDifficulty != "expert" || rounds.gotLimit != 3 {
		t.Errorf("query = (%q, %d)", rounds.gotDifficulty, rounds.gotLimit)
	}
	if !strings.Contains(rec.Body.String(), `"score":90`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	for _, bad := range []string{"0", "abc", "1000"} {
		if rec := get(t, r, "/api/rounds?limit="+bad); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", bad, rec.Code)
		}
	}
}

func TestSessionEndpoints(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	r, _, _ := newTestRouter(t, hub)

	if rec := get(t, r, "/api/sessions/alice"); rec.Code != http.StatusNotFound {
		t.Fatalf("missing session: status = %d, want 404", rec.Code)
	}

	hub.Publish("alice", testSnapshot())
	hub.Publish("bob", testSnapshot())

	rec := get(t, r, "/api/sessions")
	var list []SessionInfo
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[0].ID != "alice" || list[1].ID != "bob" {
		t.Fatalf("sessions = %+v", list)
	}

	rec = get(t, r, "/api/sessions/alice")
	var one SessionInfo
	if err := json.NewDecoder(rec.Body).Decode(&one); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if one.State.Grid.Cols != 20 || len(one.State.Snake) != 1 {
		t.Errorf("state = %+v", one.State)
	}

	rec = get(t, r, "/api/sessions/alice/frame.png")
	if rec.Code != http.StatusOK {
		t.Fatalf("frame status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "\x89PNG") {
		t.Error("frame is not a PNG")
	}

	hub.Remove("alice")
	if rec := get(t, r, "/api/sessions/alice"); rec.Code != http.StatusNotFound {
		t.Errorf("removed session: status = %d, want 404", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _, _ := newTestRouter(t, NewHub(nil, nil, nil))
	rec := get(t, r, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "nird_sessions_active") {
		t.Error("metrics output missing nird_sessions_active")
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2})
	now := time.Unix(1000, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.1.1.1") || !rl.Allow("1.1.1.1") {
		t.Fatal("burst should be allowed")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("third request should be rejected")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("other IPs have their own bucket")
	}
	now = now.Add(time.Second)
	if !rl.Allow("1.1.1.1") {
		t.Error("token should refill after a second")
	}

	allowed, rejected := rl.Stats()
	if allowed != 4 || rejected != 1 {
		t.Errorf("stats = (%d, %d), want (4, 1)", allowed, rejected)
	}

	now = now.Add(time.Hour)
	if n := rl.cleanup(); n != 2 {
		t.Errorf("cleanup removed %d, want 2", n)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewIPRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1})
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"remote addr", nil, "10.0.0.1:1234", "10.0.0.1"},
		{"forwarded", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:1", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "10.0.0.1:1", "5.6.7.8"},
		{"no port", nil, "pipe", "pipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			if got := ClientIP(req); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		allowed []string
		origin  string
		want    bool
	}{
		{nil, "", true},
		{nil, "http://evil.test", false},
		{[]string{"*"}, "http://any.test", true},
		{[]string{"http://nird.test"}, "HTTP://NIRD.TEST", true},
		{[]string{"http://nird.test"}, "http://other.test", false},
	}
	for _, tt := range tests {
		if got := originAllowed(tt.allowed, tt.origin); got != tt.want {
			t.Errorf("originAllowed(%v, %q) = %v, want %v", tt.allowed, tt.origin, got, tt.want)
		}
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebsocketStream(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, reg)
	hub := NewHub([]string{"*"}, m, nil)
	hub.Publish("alice", testSnapshot())

	srv := httptest.NewServer(NewRouter(RouterConfig{Hub: hub, Metrics: m}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	msg := readMessage(t, conn)
	if msg.Event != "snapshot" || msg.Session != "alice" || msg.Data == nil {
		t.Fatalf("initial message = %+v", msg)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("clients = %d, want 1", hub.ClientCount())
	}

	snap := testSnapshot()
	snap.Score = 30
	hub.Publish("bob", snap)
	msg = readMessage(t, conn)
	if msg.Session != "bob" || msg.Data.Score != 30 {
		t.Errorf("publish message = %+v", msg)
	}

	hub.Remove("bob")
	msg = readMessage(t, conn)
	if msg.Event != "closed" || msg.Session != "bob" || msg.Data != nil {
		t.Errorf("remove message = %+v", msg)
	}

	hub.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to close")
	}
}

func TestHubRemoveUnknownIsSilent(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	hub.Remove("ghost")
	if len(hub.Sessions()) != 0 {
		t.Error("sessions should be empty")
	}
}
