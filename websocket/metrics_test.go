package websocket

import (
	"testing"
	"time"

	"github.com/aukilabs/caster/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"
)

func TestHandlerWithMetrics(t *testing.T) {
	client, close := NewTestingEnv(t, "encoding=binary", newTestHandler())
	defer close()

	sendMsg(t, client, models.MsgTypeCastRequest, 1, testCastRequest)

	var b []byte
	err := websocket.Message.Receive(client, &b)
	require.NoError(t, err)

	received := testutil.ToFloat64(wsReceivedMsgs.With(prometheus.Labels{
		publicEndpointLabel: "https://caster-test.com",
		msgTypeLabel:        string(models.MsgTypeCastRequest),
	}))
	require.GreaterOrEqual(t, received, float64(1))

	sentBytes := wsSentBytes.With(prometheus.Labels{
		publicEndpointLabel: "https://caster-test.com",
		msgTypeLabel:        string(models.MsgTypeCastResponse),
		encodingLabel:       "binary",
	})
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(sentBytes) >= float64(len(b))
	}, time.Second, time.Millisecond*10)
}

func TestHandlerWithMetricsFrameEncoding(t *testing.T) {
	h := HandlerWithMetrics(&CastHandler{}, "").(*handlerWithMetrics)
	h.encoding = "binary+snappy"

	require.Equal(t, "json", h.frameEncoding(models.Msg{Type: models.MsgTypeErrorResponse}))
	require.Equal(t, "binary+snappy", h.frameEncoding(models.NewBinaryMsg(models.MsgTypeCastResponse, 1, []byte{1})))
}
