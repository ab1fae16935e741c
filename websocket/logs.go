package websocket

import (
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aukilabs/caster/models"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/hagall-common/errors"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"golang.org/x/net/websocket"
)

// HandlerWithLogs decorates h with logs. Inbound messages are counted by
// type and summarized every summaryInterval.
func HandlerWithLogs(h Handler, summaryInterval time.Duration) Handler {
	ctx, cancel := context.WithCancel(context.Background())

	handler := &handlerWithLogs{
		Handler:            h,
		summaryInterval:    summaryInterval,
		closeSummaryWorker: cancel,
		counter:            make(map[string]int),
	}

	go handler.startSummaryWorker(ctx)
	return handler
}

type handlerWithLogs struct {
	Handler

	originalRequest *http.Request
	encoding        string

	summaryInterval    time.Duration
	closeSummaryWorker func()
	counterMutex       sync.Mutex
	counter            map[string]int
	castRays           int
}

func (h *handlerWithLogs) HandleConnect(conn *websocket.Conn) {
	h.Handler.HandleConnect(conn)

	req := conn.Request()
	h.originalRequest = req
	if encoding, err := models.EncodingFromQuery(req.URL.Query()); err == nil {
		h.encoding = encoding.String()
	}

	h.entry().
		WithTag("http_headers", struct {
			UserAgent               string `json:"user_agent,omitempty"`
			XForwardedFor           string `json:"x_forwarded_for,omitempty"`
			CloudFrontCountryName   string `json:"cloudfront_viewer_country,omitempty"`
			CloudFrontViewerAddress string `json:"cloudfront_viewer_address,omitempty"`
		}{
			UserAgent:               req.UserAgent(),
			XForwardedFor:           req.Header.Get(httpcmn.XForwardedForHeaderKey),
			CloudFrontCountryName:   req.Header.Get(httpcmn.CloudFrontCountryNameHeaderKey),
			CloudFrontViewerAddress: req.Header.Get(httpcmn.CloudFrontViewerAddressHeaderKey),
		}).
		Info("new client is connected")
}

func (h *handlerWithLogs) HandleDisconnect(err error) {
	h.Handler.HandleDisconnect(err)

	entry := h.entry()
	if err != nil && !errors.Is(err, context.Canceled) {
		entry = entry.WithTag("reason", err.Error())
	}
	entry.Info("client disconnected")
}

func (h *handlerWithLogs) HandleCast(ctx context.Context, respond ResponseSender, msg models.Msg) error {
	var req models.CastRequest
	if err := msg.DataTo(&req); err == nil {
		h.counterMutex.Lock()
		h.castRays += req.RayCount
		h.counterMutex.Unlock()
	}

	return h.Handler.HandleCast(ctx, respond, msg)
}

func (h *handlerWithLogs) Receiver() Receiver {
	receive := h.Handler.Receiver()

	return func() (models.Msg, int, error) {
		msg, n, err := receive()
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			h.entry().Error(errors.New("receiving message failed").Wrap(err))
		} else if err == nil {
			h.entry().
				WithTag("msg_type", msg.TypeString()).
				WithTag("request_id", msg.RequestID).
				Debug("message received")
			h.incCounter(msg.TypeString())
		}
		return msg, n, err
	}
}

func (h *handlerWithLogs) Sender() Sender {
	sender := h.Handler.Sender()

	return func(msg models.Msg) (int, error) {
		msgType := msg.TypeString()

		n, err := sender(msg)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			h.entry().
				WithTag("msg_type", msgType).
				Error(errors.New("sending message failed").Wrap(err))
		} else if err == nil {
			h.entry().
				WithTag("msg_type", msgType).
				WithTag("request_id", msg.RequestID).
				WithTag("bytes", n).
				Debug("message sent")
		}
		return n, err
	}
}

func (h *handlerWithLogs) Close() {
	h.Handler.Close()
	h.closeSummaryWorker()
	h.logSummary()
}

func (h *handlerWithLogs) entry() logs.Entry {
	return logs.WithTag("encoding", h.encoding).
		WithClientID(h.GetClientID())
}

func (h *handlerWithLogs) startSummaryWorker(ctx context.Context) {
	ticker := time.NewTicker(h.summaryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			h.logSummary()
		}
	}
}

func (h *handlerWithLogs) incCounter(msgType string) {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	h.counter[msgType]++
}

func (h *handlerWithLogs) logSummary() {
	h.counterMutex.Lock()
	defer h.counterMutex.Unlock()

	if len(h.counter) == 0 {
		return
	}

	entry := h.entry().
		WithTag("time_interval", h.summaryInterval).
		WithTag("cast_rays", h.castRays)

	for k, v := range h.counter {
		entry = entry.WithTag(k, v)
		delete(h.counter, k)
	}
	h.castRays = 0

	entry.Info("inbound message summary")
}
