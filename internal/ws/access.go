package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gisvideo/backend/internal/domain"
	"github.com/gisvideo/backend/internal/handler"
	"github.com/gisvideo/backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// TokenVerifier validates the token passed in the query string.
type TokenVerifier interface {
	VerifyToken(token string) (*domain.IdentityClaims, error)
}

// AccessHandler streams live access snapshots for one video over a WebSocket.
type AccessHandler struct {
	identity TokenVerifier
	catalog  *service.CatalogService
	access   *service.AccessService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewAccessHandler creates an AccessHandler. Origins are checked against allowed;
// an empty list accepts any origin.
func NewAccessHandler(identity TokenVerifier, catalog *service.CatalogService, access *service.AccessService, allowed []string, log zerolog.Logger) *AccessHandler {
	return &AccessHandler{
		identity: identity,
		catalog:  catalog,
		access:   access,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowed)},
		log:      log.With().Str("component", "ws").Logger(),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Handle upgrades GET /api/videos/{id}/access/live?token=JWT and writes one
// JSON snapshot per access change until either side goes away.
func (h *AccessHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		handler.JSON(w, http.StatusUnauthorized, map[string]string{"error": "no token provided"})
		return
	}
	claims, err := h.identity.VerifyToken(token)
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	video, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handler.Error(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.With().Str("user_id", claims.Sub).Str("video_id", video.ID).Logger()
	log.Debug().Msg("live access connected")

	// The request context is not tied to the hijacked connection.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.readPump(conn, cancel)
	go h.pingLoop(ctx, conn)

	for snap, err := range h.access.Watch(ctx, claims.Sub, video.ID) {
		if err != nil {
			log.Warn().Err(err).Msg("access snapshot failed")
			continue
		}
		if err := h.write(conn, func() error { return conn.WriteJSON(snap) }); err != nil {
			log.Debug().Err(err).Msg("live access write failed")
			break
		}
	}
	log.Debug().Msg("live access disconnected")
}

// readPump discards client messages and cancels once the peer closes.
func (h *AccessHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *AccessHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *AccessHandler) write(conn *websocket.Conn, fn func() error) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn()
}
