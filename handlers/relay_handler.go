package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gopkg.in/op/go-logging.v1"

	"cryptochat-backend/crypto"
	"cryptochat-backend/models"
	"cryptochat-backend/registry"
)

const (
	// RelaySuffix is appended to every message passing through the relay.
	RelaySuffix = " (processed)"

	defaultRelayMethod = "caesar"
)

// relayKeys holds the methods the relay accepts and the key used when a
// frame carries none.
var relayKeys = map[string]string{
	"caesar":   "3",
	"vigenere": "SECRET",
	"xor":      "KEY",
}

// RelayHandler serves the stateless classical relay: every frame names its
// cipher and key, so no handshake is involved.
type RelayHandler struct {
	symmetric *registry.Symmetric
	upgrader  websocket.Upgrader
	log       *logging.Logger
}

func NewRelayHandler(symmetric *registry.Symmetric, allowOrigins []string, log *logging.Logger) *RelayHandler {
	return &RelayHandler{
		symmetric: symmetric,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowOrigins),
		},
		log: log,
	}
}

func (h *RelayHandler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warningf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)
	h.log.Infof("relay client connected from %s", c.ClientIP())

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warningf("relay read failed: %v", err)
			}
			return
		}

		var resp any
		var req models.RelayFrame
		if err := json.Unmarshal(frame, &req); err != nil {
			h.log.Debugf("relay: malformed frame: %v", err)
			resp = models.RelayError{Message: "malformed JSON frame", Error: true}
		} else if out, err := h.Relay(req); err != nil {
			h.log.Infof("relay: %v", err)
			resp = models.RelayError{Message: fmt.Sprintf("server error: %v", err), Error: true}
		} else {
			resp = out
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(resp); err != nil {
			h.log.Warningf("relay write failed: %v", err)
			return
		}
	}
}

// Relay decrypts req with its method and key, appends RelaySuffix and
// encrypts the result the same way.
func (h *RelayHandler) Relay(req models.RelayFrame) (models.RelayFrame, error) {
	method := req.Method
	if method == "" {
		method = defaultRelayMethod
	}
	cipher, err := h.symmetric.Get(method, registry.ImplementationLibrary)
	if err != nil {
		return models.RelayFrame{}, err
	}
	key, ok := relayKeys[cipher.Name()]
	if !ok {
		return models.RelayFrame{}, fmt.Errorf("%w: %q is not available on the relay", crypto.ErrUnknownAlgorithm, method)
	}
	if req.Key != "" {
		key = req.Key
	}

	plaintext, err := cipher.Decrypt(req.Message, []byte(key))
	if err != nil {
		return models.RelayFrame{}, err
	}
	ciphertext, err := cipher.Encrypt(plaintext+RelaySuffix, []byte(key))
	if err != nil {
		return models.RelayFrame{}, err
	}
	return models.RelayFrame{Message: ciphertext, Method: cipher.Name(), Key: key}, nil
}
