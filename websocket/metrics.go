package websocket

import (
	"context"
	"time"

	"github.com/aukilabs/caster/models"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/net/websocket"
)

const (
	errTypeLabel        = "error_type"
	msgTypeLabel        = "msg_type"
	encodingLabel       = "encoding"
	publicEndpointLabel = "public_endpoint"
)

var (
	wsConnectedClients = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ws_connected_clients",
		Help: "The number of connected clients.",
	}, []string{
		publicEndpointLabel,
		encodingLabel,
	})

	wsReceivedMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_received_msgs",
		Help: "The number of messages received from WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})

	wsReceivedBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_received_bytes",
		Help: "The number of bytes received from WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})

	wsReceiveError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_receive_errors",
		Help: "The errors that occured while receiving a websocket message.",
	}, []string{
		publicEndpointLabel,
		errTypeLabel,
	})

	wsSentMsgs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_msgs",
		Help: "The number of messages sent to WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
		encodingLabel,
	})

	wsSentBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_sent_bytes",
		Help: "The number of bytes sent to WebSocket connections.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
		encodingLabel,
	})

	wsSendError = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_send_errors",
		Help: "The errors that occured while sending a websocket message.",
	}, []string{
		publicEndpointLabel,
		errTypeLabel,
		msgTypeLabel,
	})

	wsMsgLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "ws_msg_latency",
		Help: "The time to process a WebSocket msg.",
	}, []string{
		publicEndpointLabel,
		msgTypeLabel,
	})
)

// HandlerWithMetrics decorates h with Prometheus metrics.
func HandlerWithMetrics(h Handler, publicEndpoint string) Handler {
	return &handlerWithMetrics{
		Handler:        h,
		publicEndpoint: publicEndpoint,
		encoding:       models.Encoding{}.String(),
	}
}

type handlerWithMetrics struct {
	Handler

	publicEndpoint string
	encoding       string
}

func (h *handlerWithMetrics) HandleConnect(conn *websocket.Conn) {
	if encoding, err := models.EncodingFromQuery(conn.Request().URL.Query()); err == nil {
		h.encoding = encoding.String()
	}

	wsConnectedClients.
		With(prometheus.Labels{
			publicEndpointLabel: h.publicEndpoint,
			encodingLabel:       h.encoding,
		}).
		Inc()

	h.Handler.HandleConnect(conn)
}

func (h *handlerWithMetrics) HandleDisconnect(err error) {
	wsConnectedClients.
		With(prometheus.Labels{
			publicEndpointLabel: h.publicEndpoint,
			encodingLabel:       h.encoding,
		}).
		Dec()

	h.Handler.HandleDisconnect(err)
}

func (h *handlerWithMetrics) HandlePing(ctx context.Context, respond ResponseSender, msg models.Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandlePing(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) HandleCast(ctx context.Context, respond ResponseSender, msg models.Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleCast(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) HandleIntersect(ctx context.Context, respond ResponseSender, msg models.Msg) error {
	return h.measureLatency(msg, func() error {
		return h.Handler.HandleIntersect(ctx, respond, msg)
	})
}

func (h *handlerWithMetrics) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (models.Msg, int, error) {
		msg, n, err := receive()
		if err != nil {
			wsReceiveError.
				With(prometheus.Labels{
					publicEndpointLabel: h.publicEndpoint,
					errTypeLabel:        errors.Type(err),
				}).
				Inc()
		} else {
			wsReceivedMsgs.
				With(prometheus.Labels{
					publicEndpointLabel: h.publicEndpoint,
					msgTypeLabel:        msg.TypeString(),
				}).
				Inc()
		}

		if n != 0 {
			wsReceivedBytes.
				With(prometheus.Labels{
					publicEndpointLabel: h.publicEndpoint,
					msgTypeLabel:        msg.TypeString(),
				}).
				Add(float64(n))
		}

		return msg, n, err
	}
}

func (h *handlerWithMetrics) Sender() Sender {
	sender := h.Handler.Sender()

	return func(msg models.Msg) (int, error) {
		msgType := msg.TypeString()

		n, err := sender(msg)
		if err != nil {
			wsSendError.
				With(prometheus.Labels{
					publicEndpointLabel: h.publicEndpoint,
					msgTypeLabel:        msgType,
					errTypeLabel:        errors.Type(err),
				}).
				Inc()
		}

		if n != 0 {
			labels := prometheus.Labels{
				publicEndpointLabel: h.publicEndpoint,
				msgTypeLabel:        msgType,
				encodingLabel:       h.frameEncoding(msg),
			}
			wsSentMsgs.With(labels).Inc()
			wsSentBytes.With(labels).Add(float64(n))
		}

		return n, err
	}
}

func (h *handlerWithMetrics) frameEncoding(msg models.Msg) string {
	if msg.IsBinary() {
		return h.encoding
	}
	return models.Encoding{}.String()
}

func (h *handlerWithMetrics) measureLatency(msg models.Msg, f func() error) error {
	start := time.Now()

	err := f()

	wsMsgLatency.With(prometheus.Labels{
		publicEndpointLabel: h.publicEndpoint,
		msgTypeLabel:        msg.TypeString(),
	}).Observe(time.Since(start).Seconds())

	return err
}
