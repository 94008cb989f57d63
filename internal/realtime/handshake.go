package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/goliatone/go-shoplist/internal/access"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/google/uuid"
)

// authWait bounds how long a fresh connection may take to present its
// credential as the first payload message.
const authWait = 10 * time.Second

// TokenVerifier resolves a bearer credential to an active principal.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

// AccessChecker reports whether a principal can read a list. It returns
// access.ErrNotFound when the list does not exist and access.ErrForbidden
// when the principal has no membership.
type AccessChecker interface {
	CanView(ctx context.Context, listID, userID uuid.UUID) error
}

// Handshake authenticates and authorizes a newly-opened connection before
// admitting it into the registry. The connection is accepted at the
// transport level first, so clients can deliver the credential as the first
// payload message instead of leaking it in query-string logs.
type Handshake struct {
	verifier TokenVerifier
	access   AccessChecker
	registry *Registry
	log      logger.Logger
}

// HandshakeDeps wires the collaborators required by the handshake.
type HandshakeDeps struct {
	Verifier TokenVerifier
	Access   AccessChecker
	Registry *Registry
	Logger   logger.Logger
}

// NewHandshake validates dependencies and builds the handshake handler.
func NewHandshake(deps HandshakeDeps) (*Handshake, error) {
	if deps.Verifier == nil {
		return nil, errors.New("realtime: token verifier is required")
	}
	if deps.Access == nil {
		return nil, errors.New("realtime: access checker is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("realtime: registry is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Handshake{
		verifier: deps.Verifier,
		access:   deps.Access,
		registry: deps.Registry,
		log:      deps.Logger,
	}, nil
}

// Handler returns the websocket handler for /ws/:listID.
func (h *Handshake) Handler() func(*websocket.Conn) {
	return h.serve
}

func (h *Handshake) serve(conn *websocket.Conn) {
	ctx := context.Background()

	listID, err := uuid.Parse(conn.Params("listID"))
	if err != nil {
		closeWith(conn, CloseNotFound, "unknown list")
		return
	}

	token := conn.Query("token")
	if token == "" {
		token = h.awaitCredential(conn)
	}
	if token == "" {
		closeWith(conn, CloseMissingCredential, "credential required")
		return
	}

	userID, err := h.verifier.Verify(ctx, token)
	if err != nil {
		closeWith(conn, CloseInvalidCredential, "invalid credential")
		return
	}

	if err := h.access.CanView(ctx, listID, userID); err != nil {
		switch {
		case errors.Is(err, access.ErrNotFound):
			closeWith(conn, CloseNotFound, "unknown list")
		case errors.Is(err, access.ErrForbidden):
			closeWith(conn, CloseForbidden, "no access")
		default:
			h.log.Error("handshake access check failed",
				logger.Field{Key: "list_id", Value: listID},
				logger.Field{Key: "error", Value: err})
			closeWith(conn, CloseGoingAway, "internal error")
		}
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"auth_ok"}`)); err != nil {
		return
	}

	client := NewClient(conn)
	go client.WritePump()

	h.registry.Connect(listID, client)
	h.log.Info("subscriber admitted",
		logger.Field{Key: "list_id", Value: listID},
		logger.Field{Key: "user_id", Value: userID},
		logger.Field{Key: "subscribers", Value: h.registry.Count(listID)})

	// The framework pools the connection once this handler returns, so the
	// write pump must be fully drained before serve unwinds.
	defer func() {
		h.registry.Disconnect(listID, client)
		_ = client.Close(websocket.CloseNormalClosure, "")
		client.Wait()
		h.log.Info("subscriber left",
			logger.Field{Key: "list_id", Value: listID},
			logger.Field{Key: "user_id", Value: userID})
	}()

	h.readLoop(conn, client)
}

// awaitCredential reads the first payload message and extracts a token from
// either supported form. Empty string means no usable credential arrived.
func (h *Handshake) awaitCredential(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(authWait))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return ""
	}
	token, form := ParseCredential(raw)
	if form == CredentialMalformed {
		return ""
	}
	return token
}

// readLoop keeps the admitted connection open, answering the keep-alive
// sentinel. Any other inbound payload is ignored.
func (h *Handshake) readLoop(conn *websocket.Conn, client *Client) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if string(raw) == "ping" {
			_ = client.SendText([]byte("pong"))
		}
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, msg)
	_ = conn.Close()
}
