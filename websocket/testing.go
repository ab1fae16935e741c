package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	httpcmn "github.com/aukilabs/hagall-common/http"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// NewTestingEnv creates a testing environment to unit test handlers. It
// returns a client connected with the given query string, and a function
// that tears the environment down.
func NewTestingEnv(t *testing.T, query string, newHandler func() Handler) (*websocket.Conn, func()) {
	var mutex sync.Mutex
	logger := t.Log

	logs.Encoder = func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	}

	logs.SetLogger(func(e logs.Entry) {
		mutex.Lock()
		defer mutex.Unlock()

		if logger != nil {
			logger(e)
		}
	})

	errors.Encoder = json.Marshal

	client, close := newTestingEnv(t, query, newHandler)
	return client, func() {
		mutex.Lock()
		defer mutex.Unlock()
		logger = nil
		close()
	}
}

func newTestingEnv(t *testing.T, query string, newHandler func() Handler) (*websocket.Conn, func()) {
	server := httptest.NewServer(websocket.Server{
		Handshake: func(c *websocket.Config, r *http.Request) error {
			return VerifyEncoding(c, r)
		},
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()

			handler := newHandler()
			defer handler.Close()

			Handle(context.Background(), conn, handler)
		},
	})

	url := strings.ReplaceAll(server.URL, "http://", "ws://")
	if query != "" {
		url += "/?" + query
	}

	config, err := websocket.NewConfig(url, "http://localhost")
	if err != nil {
		t.Fatalf("error initializing web socket: %s", err)
	}

	config.Header.Set("User-Agent", "ted")
	config.Header.Set("X-Forwarded-for", "192.0.0.0")
	config.Header.Set(httpcmn.HeaderPosemeshClientID, uuid.NewString())

	client, err := websocket.DialConfig(config)
	if err != nil {
		t.Fatalf("error dialing web socket: %s", err)
	}

	return client, func() {
		client.Close()
		server.Close()
	}
}
