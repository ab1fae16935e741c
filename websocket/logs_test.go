package websocket

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/stretchr/testify/require"
)

func TestHandlerWithLogsIncCounter(t *testing.T) {
	h := HandlerWithLogs(&CastHandler{}, time.Second).(*handlerWithLogs)
	defer h.Close()

	h.incCounter("test")
	require.Equal(t, 1, h.counter["test"])
}

func TestHandlerWithLogsLogSummary(t *testing.T) {
	testClientID := "test-client"
	h := HandlerWithLogs(&CastHandler{clientID: testClientID}, time.Second).(*handlerWithLogs)
	defer h.Close()

	h.incCounter("cast_request")
	h.incCounter("cast_request")
	h.incCounter("ping_request")
	h.castRays = 42

	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		fmt.Fprint(&b, e)
	})

	h.logSummary()
	require.Empty(t, h.counter)
	require.Zero(t, h.castRays)

	logString := b.String()
	clientIDTag := fmt.Sprintf(`"%s":"%s"`, logs.ClientIDTag, testClientID)
	require.Contains(t, logString, `"cast_request":2`)
	require.Contains(t, logString, `"ping_request":1`)
	require.Contains(t, logString, `"cast_rays":42`)
	require.Contains(t, logString, clientIDTag)
	t.Log(b.String())
}

func TestHandlerWithLogsLogSummaryWithoutMessages(t *testing.T) {
	h := HandlerWithLogs(&CastHandler{}, time.Second).(*handlerWithLogs)
	defer h.Close()

	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		fmt.Fprint(&b, e)
	})

	h.logSummary()
	require.Empty(t, b.String())
}

func TestHandlerWithLogsStartSummaryWorker(t *testing.T) {
	var wg sync.WaitGroup
	var once sync.Once

	var mutex sync.Mutex
	var b strings.Builder
	logs.SetInlineEncoder()
	logs.SetLogger(func(e logs.Entry) {
		mutex.Lock()
		defer mutex.Unlock()

		fmt.Fprint(&b, e)
		once.Do(wg.Done)
	})

	wg.Add(1)
	h := HandlerWithLogs(&CastHandler{}, time.Millisecond).(*handlerWithLogs)
	defer h.Close()

	// No summary is logged until a counter is incremented.
	h.incCounter("ping_request")

	wg.Wait()

	mutex.Lock()
	out := b.String()
	mutex.Unlock()

	require.NotEmpty(t, out)
	t.Log(out)
}
