package models

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
)

const (
	// The message could not be decoded.
	ErrTypeMsgDecode = "msg_decode"
)

// MsgType identifies the kind of a message exchanged over a WebSocket
// connection.
type MsgType string

const (
	MsgTypePingRequest       MsgType = "ping_request"
	MsgTypePingResponse      MsgType = "ping_response"
	MsgTypeCastRequest       MsgType = "cast_request"
	MsgTypeCastResponse      MsgType = "cast_response"
	MsgTypeIntersectRequest  MsgType = "intersect_request"
	MsgTypeIntersectResponse MsgType = "intersect_response"
	MsgTypeErrorResponse     MsgType = "error_response"
)

// Msg is the envelope of the messages exchanged over a WebSocket connection.
//
// A message with a Binary payload is sent as a binary frame that holds only
// the payload. Other messages are sent as JSON text frames.
type Msg struct {
	Type      MsgType         `json:"type"`
	RequestID uint32          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Binary    []byte          `json:"-"`
}

// NewMsg returns a message with data encoded as JSON.
func NewMsg(msgType MsgType, requestID uint32, data any) (Msg, error) {
	msg := Msg{
		Type:      msgType,
		RequestID: requestID,
	}

	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return Msg{}, errors.New("encoding message data failed").
				WithTag("msg_type", msgType).
				Wrap(err)
		}
		msg.Data = b
	}

	return msg, nil
}

// NewBinaryMsg returns a message sent as a binary frame.
func NewBinaryMsg(msgType MsgType, requestID uint32, payload []byte) Msg {
	return Msg{
		Type:      msgType,
		RequestID: requestID,
		Binary:    payload,
	}
}

// DecodeMsg decodes a JSON message.
func DecodeMsg(b []byte) (Msg, error) {
	var msg Msg
	if err := json.Unmarshal(b, &msg); err != nil {
		return Msg{}, errors.New("decoding message failed").
			WithType(ErrTypeMsgDecode).
			Wrap(err)
	}

	if msg.Type == "" {
		return Msg{}, errors.New("message type is missing").
			WithType(ErrTypeMsgDecode)
	}

	return msg, nil
}

// Encode returns the frame payload of the message.
func (m Msg) Encode() ([]byte, error) {
	if m.IsBinary() {
		return m.Binary, nil
	}
	return json.Marshal(m)
}

func (m Msg) IsBinary() bool {
	return m.Binary != nil
}

// DataTo decodes the message data into v.
func (m Msg) DataTo(v any) error {
	if len(m.Data) == 0 {
		return errors.New("message has no data").
			WithType(ErrTypeMsgDecode).
			WithTag("msg_type", m.Type)
	}

	if err := json.Unmarshal(m.Data, v); err != nil {
		return errors.New("decoding message data failed").
			WithType(ErrTypeMsgDecode).
			WithTag("msg_type", m.Type).
			Wrap(err)
	}
	return nil
}

func (m Msg) TypeString() string {
	if m.Type == "" {
		return "unknown"
	}
	return string(m.Type)
}

// NewErrorMsg returns an error response to the request with the given id.
func NewErrorMsg(requestID uint32, err error) Msg {
	data, _ := json.Marshal(ErrorResponse{
		Code:    ErrorCode(err),
		Message: err.Error(),
	})

	return Msg{
		Type:      MsgTypeErrorResponse,
		RequestID: requestID,
		Data:      data,
	}
}
