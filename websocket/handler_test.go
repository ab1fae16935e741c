package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/caster/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func newTestHandler() func() Handler {
	engine := &models.Engine{
		Pool:        caster.NewPool(2),
		MaxRayCount: 64,
	}

	return func() Handler {
		var h Handler = &CastHandler{
			Caster:            engine,
			ClientIdleTimeout: time.Minute,
		}

		h = HandlerWithLogs(h, time.Millisecond*100)
		h = HandlerWithMetrics(h, "https://caster-test.com")
		return h
	}
}

func sendMsg(t *testing.T, conn *websocket.Conn, msgType models.MsgType, requestID uint32, data any) {
	msg, err := models.NewMsg(msgType, requestID, data)
	require.NoError(t, err)

	b, err := msg.Encode()
	require.NoError(t, err)

	err = websocket.Message.Send(conn, string(b))
	require.NoError(t, err)
}

func receiveMsg(t *testing.T, conn *websocket.Conn) models.Msg {
	var b []byte
	err := websocket.Message.Receive(conn, &b)
	require.NoError(t, err)

	msg, err := models.DecodeMsg(b)
	require.NoError(t, err)
	return msg
}

func receiveErrorResponse(t *testing.T, conn *websocket.Conn) (models.Msg, models.ErrorResponse) {
	msg := receiveMsg(t, conn)
	require.Equal(t, models.MsgTypeErrorResponse, msg.Type)

	var res models.ErrorResponse
	err := msg.DataTo(&res)
	require.NoError(t, err)
	return msg, res
}

var testCastRequest = models.CastRequest{
	ViewAngle:      0,
	FOV:            0.5,
	RayCount:       4,
	MaxLength:      20,
	Segments:       [][4]float64{{5, -10, 5, 10}},
	CircleAccuracy: 0.01,
}

func TestHandlerHandlePing(t *testing.T) {
	client, close := NewTestingEnv(t, "", newTestHandler())
	defer close()

	sendMsg(t, client, models.MsgTypePingRequest, 1, nil)

	msg := receiveMsg(t, client)
	require.Equal(t, models.MsgTypePingResponse, msg.Type)
	require.Equal(t, uint32(1), msg.RequestID)
}

func TestHandlerHandleCast(t *testing.T) {
	client, close := NewTestingEnv(t, "", newTestHandler())
	defer close()

	sendMsg(t, client, models.MsgTypeCastRequest, 2, testCastRequest)

	msg := receiveMsg(t, client)
	require.Equal(t, models.MsgTypeCastResponse, msg.Type)
	require.Equal(t, uint32(2), msg.RequestID)

	var res models.CastResponse
	err := msg.DataTo(&res)
	require.NoError(t, err)
	require.Equal(t, uint32(2), res.RequestID)
	require.Len(t, res.Rays, 4)
	for _, r := range res.Rays {
		require.NotNil(t, r.Intersection)
		require.InDelta(t, 5, r.Intersection.X, 1e-9)
	}
}

func TestHandlerHandleCastBinary(t *testing.T) {
	for _, query := range []string{"encoding=binary", "encoding=binary&compression=snappy"} {
		t.Run(query, func(t *testing.T) {
			client, close := NewTestingEnv(t, query, newTestHandler())
			defer close()

			sendMsg(t, client, models.MsgTypeCastRequest, 3, testCastRequest)

			var b []byte
			err := websocket.Message.Receive(client, &b)
			require.NoError(t, err)

			if query == "encoding=binary&compression=snappy" {
				b, err = models.DecompressSnappy(b)
				require.NoError(t, err)
			}

			res, err := models.DecodeCastResponse(b)
			require.NoError(t, err)
			require.Equal(t, uint32(3), res.RequestID)
			require.Len(t, res.Rays, 4)
			require.NotNil(t, res.Rays[0].Intersection)
		})
	}
}

func TestHandlerHandleIntersect(t *testing.T) {
	client, close := NewTestingEnv(t, "", newTestHandler())
	defer close()

	sendMsg(t, client, models.MsgTypeIntersectRequest, 4, models.IntersectRequest{
		MaxLength:      20,
		Circles:        [][3]float64{{10, 0, 2}},
		CircleAccuracy: 0.01,
	})

	msg := receiveMsg(t, client)
	require.Equal(t, models.MsgTypeIntersectResponse, msg.Type)

	var res models.IntersectResponse
	err := msg.DataTo(&res)
	require.NoError(t, err)
	require.Equal(t, uint32(4), res.RequestID)
	require.NotNil(t, res.Intersection)
	require.InDelta(t, 8, res.Intersection.Len, 0.01)
}

func TestHandlerErrorResponses(t *testing.T) {
	client, close := NewTestingEnv(t, "", newTestHandler())
	defer close()

	t.Run("invalid fan", func(t *testing.T) {
		req := testCastRequest
		req.RayCount = 0
		sendMsg(t, client, models.MsgTypeCastRequest, 5, req)

		msg, res := receiveErrorResponse(t, client)
		require.Equal(t, uint32(5), msg.RequestID)
		require.Equal(t, caster.ErrTypeInvalidInput, res.Code)
	})

	t.Run("too many rays", func(t *testing.T) {
		req := testCastRequest
		req.RayCount = 65
		sendMsg(t, client, models.MsgTypeCastRequest, 6, req)

		_, res := receiveErrorResponse(t, client)
		require.Equal(t, caster.ErrTypeInvalidInput, res.Code)
	})

	t.Run("cast request without data", func(t *testing.T) {
		sendMsg(t, client, models.MsgTypeCastRequest, 7, nil)

		_, res := receiveErrorResponse(t, client)
		require.Equal(t, models.ErrTypeMsgDecode, res.Code)
	})

	t.Run("malformed message", func(t *testing.T) {
		err := websocket.Message.Send(client, `{"type":`)
		require.NoError(t, err)

		_, res := receiveErrorResponse(t, client)
		require.Equal(t, models.ErrTypeMsgDecode, res.Code)
	})

	t.Run("unsupported message type", func(t *testing.T) {
		sendMsg(t, client, models.MsgTypeCastResponse, 8, nil)

		msg, res := receiveErrorResponse(t, client)
		require.Equal(t, uint32(8), msg.RequestID)
		require.Equal(t, models.ErrTypeMsgDecode, res.Code)
	})

	t.Run("connection is still usable", func(t *testing.T) {
		sendMsg(t, client, models.MsgTypePingRequest, 9, nil)

		msg := receiveMsg(t, client)
		require.Equal(t, models.MsgTypePingResponse, msg.Type)
	})
}

func TestHandlerDisconnectOnIdleTimeout(t *testing.T) {
	client, close := newTestingEnv(t, "", func() Handler {
		return &CastHandler{
			Caster:            &models.Engine{},
			ClientIdleTimeout: 0,
		}
	})
	defer close()

	var b []byte
	err := websocket.Message.Receive(client, &b)
	require.Error(t, err)
}

func TestHandlerDisconnectOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	server := httptest.NewServer(websocket.Server{
		Handler: func(conn *websocket.Conn) {
			defer close(done)
			defer conn.Close()

			Handle(ctx, conn, &CastHandler{
				Caster:            &models.Engine{},
				ClientIdleTimeout: time.Minute,
			})
		},
	})
	defer server.Close()

	client, err := websocket.Dial(strings.ReplaceAll(server.URL, "http://", "ws://"), "", "http://localhost")
	require.NoError(t, err)
	defer client.Close()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second * 5):
		t.Fatal("handler did not return")
	}

	var b []byte
	err = websocket.Message.Receive(client, &b)
	require.Error(t, err)
}

func TestVerifyEncoding(t *testing.T) {
	err := VerifyEncoding(nil, httptest.NewRequest(http.MethodGet, "/?encoding=binary", nil))
	require.NoError(t, err)

	err = VerifyEncoding(nil, httptest.NewRequest(http.MethodGet, "/?encoding=xml", nil))
	require.Error(t, err)
}
