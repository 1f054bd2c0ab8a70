package ws

import (
	"chat-bridge/contract"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests to websocket sessions.
type Server struct {
	log        *slog.Logger
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	upgrader   websocket.Upgrader
	validate   *validator.Validate

	connectionBufferSize int
}

// NewServer wires the transport. An empty allowedOrigin admits any
// origin, matching the original local-development posture; set it in
// any real deployment.
func NewServer(log *slog.Logger, registry contract.IRegistry,
	dispatcher contract.IDispatcher, connectionBufferSize int,
	allowedOrigin string) *Server {
	return &Server{
		log:        log,
		registry:   registry,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		validate:             validator.New(),
		connectionBufferSize: connectionBufferSize,
	}
}

// ServeHTTP handles one connection for its entire lifetime. The deferred
// session teardown inside run keeps the registry leak-free even on
// abrupt transport failures.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	session := newSession(conn, s.registry, s.dispatcher, s.validate,
		s.log, s.connectionBufferSize)

	s.log.Info("User connected", "connection_id", session.id)
	session.run(r.Context())
}
