package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/aukilabs/caster/models"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/google/uuid"
	"golang.org/x/net/websocket"
)

// The maximum size of an incoming frame.
const maxPayloadBytes = 4 << 20

// CastHandler serves the cast requests of a single client connection.
type CastHandler struct {
	// The caster that runs the requests.
	Caster models.Caster

	// The time a client is idle before being disconnected.
	ClientIdleTimeout time.Duration

	conn     *websocket.Conn
	clientID string
	encoding models.Encoding
}

func (h *CastHandler) HandleConnect(conn *websocket.Conn) {
	req := conn.Request()
	h.clientID = req.Header.Get(httpcmn.HeaderPosemeshClientID)
	if h.clientID == "" {
		h.clientID = uuid.NewString()
	}

	// Invalid encodings are rejected by VerifyEncoding during the
	// handshake.
	h.encoding, _ = models.EncodingFromQuery(req.URL.Query())

	conn.MaxPayloadBytes = maxPayloadBytes
	h.conn = conn
}

func (h *CastHandler) HandleDisconnect(err error) {
}

func (h *CastHandler) HandlePing(ctx context.Context, respond ResponseSender, msg models.Msg) error {
	res, err := models.NewMsg(models.MsgTypePingResponse, msg.RequestID, nil)
	if err != nil {
		return err
	}

	respond.SendMsg(res)
	return nil
}

func (h *CastHandler) HandleCast(ctx context.Context, respond ResponseSender, msg models.Msg) error {
	var req models.CastRequest
	if err := msg.DataTo(&req); err != nil {
		respond.SendMsg(models.NewErrorMsg(msg.RequestID, err))
		return nil
	}

	if req.RequestID == 0 {
		req.RequestID = msg.RequestID
	}

	res, err := h.Caster.Cast(ctx, req)
	if err != nil {
		respond.SendMsg(models.NewErrorMsg(req.RequestID, err))
		return nil
	}

	if h.encoding.Binary {
		respond.SendMsg(models.NewBinaryMsg(models.MsgTypeCastResponse, res.RequestID, h.encoding.EncodeCastResponse(res)))
		return nil
	}

	resMsg, err := models.NewMsg(models.MsgTypeCastResponse, res.RequestID, res)
	if err != nil {
		return err
	}

	respond.SendMsg(resMsg)
	return nil
}

func (h *CastHandler) HandleIntersect(ctx context.Context, respond ResponseSender, msg models.Msg) error {
	var req models.IntersectRequest
	if err := msg.DataTo(&req); err != nil {
		respond.SendMsg(models.NewErrorMsg(msg.RequestID, err))
		return nil
	}

	if req.RequestID == 0 {
		req.RequestID = msg.RequestID
	}

	res, err := h.Caster.Intersect(ctx, req)
	if err != nil {
		respond.SendMsg(models.NewErrorMsg(req.RequestID, err))
		return nil
	}

	resMsg, err := models.NewMsg(models.MsgTypeIntersectResponse, res.RequestID, res)
	if err != nil {
		return err
	}

	respond.SendMsg(resMsg)
	return nil
}

func (h *CastHandler) Receiver() Receiver {
	return func() (models.Msg, int, error) {
		var b []byte
		if err := websocket.Message.Receive(h.conn, &b); err != nil {
			return models.Msg{}, 0, err
		}

		msg, err := models.DecodeMsg(b)
		return msg, len(b), err
	}
}

func (h *CastHandler) Sender() Sender {
	return func(msg models.Msg) (int, error) {
		b, err := msg.Encode()
		if err != nil {
			return 0, err
		}

		if msg.IsBinary() {
			err = websocket.Message.Send(h.conn, b)
		} else {
			err = websocket.Message.Send(h.conn, string(b))
		}
		if err != nil {
			return 0, err
		}

		return len(b), nil
	}
}

func (h *CastHandler) Close() {
}

func (h *CastHandler) IdleTimeout() time.Duration {
	return h.ClientIdleTimeout
}

func (h *CastHandler) GetClientID() string {
	return h.clientID
}

// Encoding returns the encoding of the cast responses sent to the client.
func (h *CastHandler) Encoding() models.Encoding {
	return h.encoding
}

// VerifyEncoding rejects WebSocket handshakes that request an unknown
// response encoding.
func VerifyEncoding(c *websocket.Config, r *http.Request) error {
	_, err := models.EncodingFromQuery(r.URL.Query())
	return err
}
