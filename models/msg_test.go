package models

import (
	"testing"

	"github.com/aukilabs/caster/caster"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestMsg(t *testing.T) {
	t.Run("json message", func(t *testing.T) {
		msg, err := NewMsg(MsgTypeCastRequest, 12, CastRequest{RayCount: 4})
		require.NoError(t, err)
		require.False(t, msg.IsBinary())

		b, err := msg.Encode()
		require.NoError(t, err)

		decoded, err := DecodeMsg(b)
		require.NoError(t, err)
		require.Equal(t, MsgTypeCastRequest, decoded.Type)
		require.Equal(t, uint32(12), decoded.RequestID)

		var req CastRequest
		err = decoded.DataTo(&req)
		require.NoError(t, err)
		require.Equal(t, 4, req.RayCount)
	})

	t.Run("message without data", func(t *testing.T) {
		msg, err := NewMsg(MsgTypePingRequest, 1, nil)
		require.NoError(t, err)

		b, err := msg.Encode()
		require.NoError(t, err)
		require.JSONEq(t, `{"type": "ping_request", "request_id": 1}`, string(b))

		var req CastRequest
		err = msg.DataTo(&req)
		require.Error(t, err)
		require.Equal(t, ErrTypeMsgDecode, errors.Type(err))
	})

	t.Run("binary message", func(t *testing.T) {
		msg := NewBinaryMsg(MsgTypeCastResponse, 1, []byte{1, 2, 3})
		require.True(t, msg.IsBinary())

		b, err := msg.Encode()
		require.NoError(t, err)
		require.Equal(t, []byte{1, 2, 3}, b)
	})
}

func TestDecodeMsgErrors(t *testing.T) {
	tests := []struct {
		scenario string
		in       string
	}{
		{
			scenario: "invalid json",
			in:       `{"type":`,
		},
		{
			scenario: "missing type",
			in:       `{"request_id": 1}`,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			_, err := DecodeMsg([]byte(test.in))
			require.Error(t, err)
			require.Equal(t, ErrTypeMsgDecode, errors.Type(err))
		})
	}
}

func TestMsgTypeString(t *testing.T) {
	require.Equal(t, "unknown", Msg{}.TypeString())
	require.Equal(t, "cast_request", Msg{Type: MsgTypeCastRequest}.TypeString())
}

func TestNewErrorMsg(t *testing.T) {
	msg := NewErrorMsg(3, errors.New("bad fan").WithType(caster.ErrTypeInvalidInput))
	require.Equal(t, MsgTypeErrorResponse, msg.Type)
	require.Equal(t, uint32(3), msg.RequestID)

	var res ErrorResponse
	err := msg.DataTo(&res)
	require.NoError(t, err)
	require.Equal(t, caster.ErrTypeInvalidInput, res.Code)
	require.NotEmpty(t, res.Message)
}
