package bot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"kopilka/internal/middleware/ratelimit"
	"kopilka/internal/middleware/trace"
)

// Server receives Telegram webhook updates. The webhook path embeds the
// bot token, which is the standard Telegram trick for rejecting posts
// from anyone but Telegram itself.
type Server struct {
	http.Server
	dispatcher *Dispatcher
	sender     Sender
	token      string
	limiter    *ratelimit.Limiter
}

// NewServer wires routes and timeouts, returning a ready-to-run server.
func NewServer(addr, token string, dispatcher *Dispatcher, sender Sender) *Server {
	mux := http.NewServeMux()
	limiter := ratelimit.NewLimiter(60)
	handler := trace.NewMiddleware(token).Middleware(limiter.Middleware(mux))

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		dispatcher: dispatcher,
		sender:     sender,
		token:      token,
		limiter:    limiter,
	}

	mux.HandleFunc("/"+token, s.handleWebhook)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/", handleIndex)

	return s
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("kopilka bot"))
}

// handleWebhook parses one Update and replies via the Bot API. Telegram
// retries updates that are not answered with 200, so every parse
// failure still acknowledges with 200 to avoid redelivery loops.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		slog.ErrorContext(r.Context(), "Read webhook body failed", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	var update Update
	if err := json.Unmarshal(body, &update); err != nil {
		slog.WarnContext(r.Context(), "Malformed update dropped", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}
	if update.Message == nil || update.Message.Text == "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	chatID := update.Message.Chat.ID
	reply := s.dispatcher.Dispatch(r.Context(), chatID, update.Message.Text)
	if reply != "" {
		// Replies go through the Bot API rather than the webhook
		// response body so delivery failures are visible.
		if err := s.sender.SendMessage(r.Context(), chatID, reply); err != nil {
			slog.ErrorContext(r.Context(), "Send reply failed", "chat_id", chatID, "error", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}

// Shutdown stops accepting webhook posts and drains in-flight handlers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
