package spectate

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vovakirdan/nird-snake/internal/metrics"
	"github.com/vovakirdan/nird-snake/internal/render"
	"github.com/vovakirdan/nird-snake/internal/storage"
)

// Scores is the shared record and top five. *session.Adapter satisfies it.
type Scores interface {
	LoadHighScore() int
	Leaderboard() []int
}

// Rounds is the round history. *storage.Store satisfies it.
type Rounds interface {
	TopRounds(difficulty string, limit int) ([]storage.Round, error)
}

// RouterConfig holds dependencies for the HTTP router.
type RouterConfig struct {
	Hub         *Hub
	Scores      Scores
	Rounds      Rounds // optional
	Metrics     *metrics.Metrics
	RateLimiter *IPRateLimiter // optional
	CORSOrigins []string
	PNG         *render.PNG
	Logger      *log.Logger // nil disables request logging
}

// NewRouter creates the chi router. It is a pure constructor: no goroutines
// are started and nothing is listened on.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.PNG == nil {
		cfg.PNG = render.NewPNG()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	h := &handlers{cfg: cfg}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Route("/api", func(r chi.Router) {
		r.Get("/leaderboard", h.leaderboard)
		r.Get("/rounds", h.rounds)
		r.Get("/sessions", h.sessions)
		r.Get("/sessions/{id}", h.session)
		r.Get("/sessions/{id}/frame.png", h.frame)
	})
	if cfg.Hub != nil {
		r.Get("/ws", cfg.Hub.ServeWS)
	}
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	return r
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"took", time.Since(start),
				"ip", ClientIP(r),
			)
		})
	}
}

type handlers struct {
	cfg RouterConfig
}

type leaderboardResponse struct {
	HighScore   int   `json:"high_score"`
	Leaderboard []int `json:"leaderboard"`
}

func (h *handlers) leaderboard(w http.ResponseWriter, _ *http.Request) {
	resp := leaderboardResponse{Leaderboard: []int{}}
	if h.cfg.Scores != nil {
		resp.HighScore = h.cfg.Scores.LoadHighScore()
		if board := h.cfg.Scores.Leaderboard(); board != nil {
			resp.Leaderboard = board
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type roundJSON struct {
	Player     string    `json:"player,omitempty"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	Won        bool      `json:"won"`
	Liberated  int       `json:"liberated"`
	Duration   int       `json:"duration_secs"`
	CreatedAt  time.Time `json:"created_at"`
}

func (h *handlers) rounds(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Rounds == nil {
		writeError(w, http.StatusNotFound, "round history disabled")
		return
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be 1..100")
			return
		}
		limit = n
	}
	list, err := h.cfg.Rounds.TopRounds(r.URL.Query().Get("difficulty"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load rounds")
		return
	}
	out := make([]roundJSON, 0, len(list))
	for _, rd := range list {
		out = append(out, roundJSON{
			Player:     rd.Player,
			Difficulty: rd.Difficulty,
			Score:      rd.Score,
			Won:        rd.Won,
			Liberated:  rd.Liberated,
			Duration:   rd.Duration,
			CreatedAt:  rd.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) sessions(w http.ResponseWriter, _ *http.Request) {
	if h.cfg.Hub == nil {
		writeJSON(w, http.StatusOK, []SessionInfo{})
		return
	}
	writeJSON(w, http.StatusOK, h.cfg.Hub.Sessions())
}

func (h *handlers) lookup(w http.ResponseWriter, r *http.Request) (SessionInfo, bool) {
	if h.cfg.Hub != nil {
		if s, ok := h.cfg.Hub.Session(chi.URLParam(r, "id")); ok {
			return s, true
		}
	}
	writeError(w, http.StatusNotFound, "session not found")
	return SessionInfo{}, false
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	if s, ok := h.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, s)
	}
}

func (h *handlers) frame(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.cfg.PNG.Encode(&buf, render.NewFrame(s.State)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
