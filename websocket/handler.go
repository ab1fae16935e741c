package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/aukilabs/caster/models"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"golang.org/x/net/websocket"
)

const (
	sendChanSize    = 512
	receiveChanSize = 64
)

// Receiver receives a message from a connection. It returns the number of
// bytes read.
type Receiver func() (models.Msg, int, error)

// Sender sends a message to a connection. It returns the number of bytes
// written.
type Sender func(models.Msg) (int, error)

// ResponseSender queues messages to be sent to a client.
type ResponseSender interface {
	SendMsg(models.Msg)
}

// Handler represents a caster connection handler.
type Handler interface {
	// Handles a client connection.
	HandleConnect(conn *websocket.Conn)

	// Handles a client's disconnection.
	HandleDisconnect(error)

	// Handles a ping request.
	HandlePing(ctx context.Context, respond ResponseSender, msg models.Msg) error

	// Handles a request to cast a fan.
	HandleCast(ctx context.Context, respond ResponseSender, msg models.Msg) error

	// Handles a request to cast a single ray.
	HandleIntersect(ctx context.Context, respond ResponseSender, msg models.Msg) error

	// Creates a message receiver used to receive incoming messages.
	Receiver() Receiver

	// Creates a message sender used to send messages.
	Sender() Sender

	// Closes the handler and releases its allocated resources.
	Close()

	// The time a client is idle before being disconnected.
	IdleTimeout() time.Duration

	GetClientID() string
}

// Handle serves the connection with the given handler until the client
// disconnects, stays idle for too long, or ctx is canceled.
func Handle(ctx context.Context, conn *websocket.Conn, h Handler) {
	handler := handler{
		Conn:    conn,
		Handler: h,
	}

	handler.Handle(ctx)
}

type handler struct {
	// The WebSocket connection.
	Conn *websocket.Conn

	// The caster handler.
	Handler Handler

	done           <-chan struct{}
	sendChan       chan models.Msg
	receiveChan    chan models.Msg
	sender         Sender
	receiver       Receiver
	disconnectChan chan error
}

func (h *handler) Handle(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	h.done = ctx.Done()

	h.Handler.HandleConnect(h.Conn)

	h.disconnectChan = make(chan error, 8)

	var wg sync.WaitGroup

	h.sendChan = make(chan models.Msg, sendChanSize)
	h.sender = h.Handler.Sender()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startSending(ctx)
	}()

	h.receiveChan = make(chan models.Msg, receiveChanSize)
	h.receiver = h.Handler.Receiver()

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.startReceiving(ctx)
	}()

	idleTimeout := h.Handler.IdleTimeout()
	idleTimer := time.NewTimer(idleTimeout)
	defer idleTimer.Stop()

	var responder = responseSender{
		sendMsg: h.sendMsg,
	}

	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
			h.handleDisconnect(ctx.Err())

		case <-idleTimer.C:
			h.disconnect(errors.New("idle connection").WithTag("duration", idleTimeout))

		case msg := <-h.receiveChan:
			idleTimer.Stop()
			idleTimer.Reset(idleTimeout)

			if err := h.handleMessage(ctx, msg, responder); err != nil {
				h.disconnect(errors.New("handling message failed").Wrap(err))
			}

		case err := <-h.disconnectChan:
			h.handleDisconnect(err)
			// cancel context so go routines can cleanly exit
			cancel()
		}
	}

	wg.Wait()
}

func (h *handler) sendMsg(msg models.Msg) {
	select {
	case h.sendChan <- msg:
	case <-h.done:
	}
}

func (h *handler) startSending(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case msg := <-h.sendChan:
			if _, err := h.sender(msg); err != nil {
				h.disconnect(errors.New("sending message failed").Wrap(err))
				return
			}
		}
	}
}

func (h *handler) startReceiving(ctx context.Context) {
	for {
		msg, _, err := h.receiver()
		if errors.IsType(err, models.ErrTypeMsgDecode) {
			h.sendMsg(models.NewErrorMsg(0, err))
			continue
		}
		if err != nil {
			h.disconnect(errors.New("receiving message failed").Wrap(err))
			return
		}

		select {
		case <-ctx.Done():
			return

		case h.receiveChan <- msg:
		}
	}
}

func (h *handler) handleMessage(ctx context.Context, msg models.Msg, responder ResponseSender) error {
	switch msg.Type {
	case models.MsgTypePingRequest:
		return h.Handler.HandlePing(ctx, responder, msg)

	case models.MsgTypeCastRequest:
		return h.Handler.HandleCast(ctx, responder, msg)

	case models.MsgTypeIntersectRequest:
		return h.Handler.HandleIntersect(ctx, responder, msg)

	default:
		responder.SendMsg(models.NewErrorMsg(msg.RequestID, errors.New("unsupported message type").
			WithType(models.ErrTypeMsgDecode).
			WithTag("msg_type", msg.Type)))
		return nil
	}
}

func (h *handler) disconnect(err error) {
	select {
	case h.disconnectChan <- err:
	default:
	}
}

func (h *handler) handleDisconnect(err error) {
	h.Conn.Close()
	h.Handler.HandleDisconnect(err)
}

type responseSender struct {
	sendMsg func(models.Msg)
}

func (r responseSender) SendMsg(msg models.Msg) {
	r.sendMsg(msg)
}
