package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gopkg.in/op/go-logging.v1"

	"cryptochat-backend/crypto"
	"cryptochat-backend/metrics"
	"cryptochat-backend/models"
	"cryptochat-backend/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 << 10
	sendBuffer     = 16

	unknownLabel = "unknown"
)

type outbound struct {
	messageType int
	data        []byte
}

// ChatHandler serves the session websocket: each connection negotiates a
// symmetric key and then exchanges encrypted messages.
type ChatHandler struct {
	engine   *session.Engine
	store    *SessionStore
	upgrader websocket.Upgrader
	log      *logging.Logger
}

// NewChatHandler creates a ChatHandler. An empty allowOrigins accepts any
// origin.
func NewChatHandler(engine *session.Engine, store *SessionStore, allowOrigins []string, log *logging.Logger) *ChatHandler {
	return &ChatHandler{
		engine: engine,
		store:  store,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowOrigins),
		},
		log: log,
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 || slices.Contains(allowed, "*") {
			return true
		}
		return slices.Contains(allowed, origin)
	}
}

type chatClient struct {
	id   string
	conn *websocket.Conn
	send chan outbound
	quit chan struct{}
	h    *ChatHandler
}

// ServeWS upgrades the request and runs the connection until it closes.
func (h *ChatHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warningf("websocket upgrade failed: %v", err)
		return
	}

	id := uuid.NewString()
	h.store.Open(h.engine.Connect(id))
	metrics.ConnectionOpened()
	h.log.Noticef("%s: connected from %s", id, c.ClientIP())

	cl := &chatClient{
		id:   id,
		conn: conn,
		send: make(chan outbound, sendBuffer),
		quit: make(chan struct{}),
		h:    h,
	}
	go cl.writePump()

	cl.reply(jsonCodec{}, models.EventConnected, models.Connected{ID: id})
	cl.readPump()

	close(cl.send)
	<-cl.quit
	if s, ok := h.store.Close(id); ok {
		h.engine.Disconnect(s)
	}
	metrics.ConnectionClosed()
	h.log.Noticef("%s: disconnected", id)
}

func (cl *chatClient) readPump() {
	cl.conn.SetReadLimit(maxMessageSize)
	cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, frame, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cl.h.log.Warningf("%s: read failed: %v", cl.id, err)
			}
			return
		}
		cl.handle(mt, frame)
	}
}

func (cl *chatClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cl.conn.Close()
		close(cl.quit)
	}()

	for {
		select {
		case msg, ok := <-cl.send:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteMessage(msg.messageType, msg.data); err != nil {
				cl.h.log.Warningf("%s: write failed: %v", cl.id, err)
				return
			}

		case <-ticker.C:
			cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (cl *chatClient) reply(codec frameCodec, event string, v any) {
	data, err := codec.encode(event, v)
	if err != nil {
		cl.h.log.Errorf("%s: failed to encode %s: %v", cl.id, event, err)
		return
	}
	select {
	case cl.send <- outbound{messageType: codec.messageType(), data: data}:
	case <-cl.quit:
	}
}

func (cl *chatClient) fail(codec frameCodec, err error) {
	code := errorCode(err)
	cl.h.log.Infof("%s: %s: %v", cl.id, code, err)
	cl.reply(codec, models.EventError, models.ErrorEvent{Code: code, Message: err.Error()})
}

func (cl *chatClient) handle(mt int, frame []byte) {
	codec, ok := codecFor(mt)
	if !ok {
		return
	}
	event, data, err := codec.decode(frame)
	if err != nil {
		cl.fail(codec, badRequest("malformed frame: %v", err))
		return
	}

	switch event {
	case models.EventKeyExchangeParams:
		cl.keyExchangeParams(codec, data)
	case models.EventSetEncryptionSettings:
		cl.setEncryptionSettings(codec, data)
	case models.EventMessage:
		cl.message(codec, data)
	default:
		cl.fail(codec, badRequest("unknown event %q", event))
	}
}

func (cl *chatClient) keyExchangeParams(codec frameCodec, data []byte) {
	var req models.KeyExchangeParamsRequest
	if err := codec.unmarshal(data, &req); err != nil {
		cl.fail(codec, badRequest("%s: %v", models.EventKeyExchangeParams, err))
		return
	}
	req.ApplyDefaults()

	var resp models.ServerPublicKey
	err := cl.h.store.Do(cl.id, func(s session.Session) (session.Session, error) {
		s, pub, err := cl.h.engine.KeyExchangeParams(s, req.AsymmetricAlgorithm)
		if err == nil {
			resp.PublicKey = base64.StdEncoding.EncodeToString(pub)
			resp.Algorithm = s.Pending.Algorithm
		}
		return s, err
	})
	if err != nil {
		cl.fail(codec, err)
		return
	}
	cl.reply(codec, models.EventServerPublicKey, resp)
}

func (cl *chatClient) setEncryptionSettings(codec frameCodec, data []byte) {
	var req models.EncryptionSettingsRequest
	if err := codec.unmarshal(data, &req); err != nil {
		cl.fail(codec, badRequest("%s: %v", models.EventSetEncryptionSettings, err))
		return
	}
	req.ApplyDefaults()

	kxLabel := unknownLabel
	var resp models.SettingsConfirmed
	err := cl.h.store.Do(cl.id, func(s session.Session) (session.Session, error) {
		if s.Pending != nil {
			kxLabel = s.Pending.Algorithm
		}
		s, err := cl.h.engine.SetEncryptionSettings(s, session.SettingsRequest{
			KeyExchangeAlgorithm: req.AsymmetricAlgorithm,
			SymmetricAlgorithm:   req.SymmetricAlgorithm,
			Implementation:       req.SymmetricImplementation,
			WrappedKey:           req.EncryptedSymmetricKey,
		})
		if err == nil {
			resp = models.SettingsConfirmed{
				Status:             "ok",
				SymmetricAlgorithm: s.Settings.SymmetricAlgorithm,
				Implementation:     s.Settings.Implementation,
			}
		}
		return s, err
	})
	metrics.Handshake(kxLabel, err)
	if err != nil {
		cl.fail(codec, err)
		return
	}
	cl.reply(codec, models.EventSettingsConfirmed, resp)
}

func (cl *chatClient) message(codec frameCodec, data []byte) {
	var req models.ChatMessage
	if err := codec.unmarshal(data, &req); err != nil {
		cl.fail(codec, badRequest("%s: %v", models.EventMessage, err))
		return
	}

	label := unknownLabel
	var reply string
	err := cl.h.store.Do(cl.id, func(s session.Session) (session.Session, error) {
		if s.Settings != nil {
			label = s.Settings.SymmetricAlgorithm
		}
		var err error
		reply, err = cl.h.engine.Message(s, req.Message)
		return s, err
	})
	metrics.Message(label, err)
	if err != nil {
		cl.fail(codec, err)
		return
	}
	cl.reply(codec, models.EventMessageResponse, models.MessageResponse{EncryptedPayload: reply})
}

// -----------------------------------------------------------------------------

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// errorCode maps an error to the code reported in error events.
func errorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrHandshakeNotReady), errors.Is(err, session.ErrSessionClosed):
		return models.CodeHandshakeNotReady
	case errors.Is(err, crypto.ErrUnknownAlgorithm):
		return models.CodeUnknownAlgorithm
	case errors.Is(err, crypto.ErrMissingKey):
		return models.CodeMissingKey
	case errors.Is(err, crypto.ErrInvalidKey):
		return models.CodeInvalidKey
	case errors.Is(err, crypto.ErrInvalidCiphertext):
		return models.CodeInvalidCiphertext
	case errors.Is(err, crypto.ErrCryptoBackend):
		return models.CodeCryptoBackend
	default:
		return models.CodeBadRequest
	}
}
