package errors

import (
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestHandler(max int) (*ErrorHandler, *fakeClock, *int32) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	var exitCode int32 = -1
	h := NewErrorHandler("", nil)
	h.now = clock.now
	h.maxErrors = max
	h.exitFunc = func(code int) { atomic.StoreInt32(&exitCode, int32(code)) }
	return h, clock, &exitCode
}

func TestRecoverReturnsHandlerError(t *testing.T) {
	want := stderrors.New("boom")
	err := Recover(func() error { return want })
	assert.Same(t, want, err)
}

func TestRecoverConvertsPanic(t *testing.T) {
	err := Recover(func() error {
		panic("nil map")
	})

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "nil map", pe.Value)
	assert.NotEmpty(t, pe.Stack)
	assert.Equal(t, "panic: nil map", err.Error())
}

func TestRecordTripsOverLimit(t *testing.T) {
	h, _, exitCode := newTestHandler(2)
	var shutdownCalled int32
	h.shutdownFunc = func() { atomic.StoreInt32(&shutdownCalled, 1) }

	assert.False(t, h.Record())
	assert.False(t, h.Record())
	assert.True(t, h.Record())

	assert.Equal(t, 3, h.Count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&shutdownCalled))
	assert.Equal(t, int32(1), atomic.LoadInt32(exitCode))
}

func TestRecordWindowSlides(t *testing.T) {
	h, clock, exitCode := newTestHandler(2)

	h.Record()
	h.Record()
	clock.advance(defaultWindow)
	assert.Equal(t, 0, h.Count())

	assert.False(t, h.Record())
	assert.Equal(t, int32(-1), atomic.LoadInt32(exitCode))
}

func TestStopDisarms(t *testing.T) {
	h, _, exitCode := newTestHandler(0)
	h.Stop()
	assert.False(t, h.Record())
	assert.Equal(t, int32(-1), atomic.LoadInt32(exitCode))
}

func TestReportPayloadTruncatesStack(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := reportPayload(ReportErrorOptions{
		Error:   "Panic /ban",
		Message: "panic: boom",
		Stack:   strings.Repeat("x", maxStackLen+10),
	}, now)

	embed := p["embeds"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, map[string]string{"name": "Error Panic /ban"}, embed["author"])
	assert.Equal(t, "2024-05-01T12:00:00Z", embed["timestamp"])

	desc := embed["description"].(string)
	assert.True(t, strings.HasPrefix(desc, "panic: boom\n```\n"))
	assert.Contains(t, desc, "...\n```")
	assert.Less(t, len(desc), maxStackLen+40)
}

func TestCommandFailedReportsPanics(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	h, _, _ := newTestHandler(10)
	h.webhookURL = srv.URL

	h.CommandFailed("warn", stderrors.New("db down"))
	h.CommandFailed("automod.create", &PanicError{Value: "boom", Stack: []byte("stack")})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &payload))
	assert.Contains(t, bodies[0], "Panic /automod.create")
	assert.Zero(t, h.Count())
}

func TestHandlePanicCountsTowardLimit(t *testing.T) {
	h, _, exitCode := newTestHandler(1)

	h.HandlePanic("GuildCreate", "nil member", []byte("stack"))
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, int32(-1), atomic.LoadInt32(exitCode))

	h.HandlePanic("MQTT stats", "closed channel", nil)
	assert.Equal(t, int32(1), atomic.LoadInt32(exitCode))
}

func TestRecoverMiddlewareSwallowsPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		defer RecoverMiddleware("Ready")()
		panic("state not ready")
	})
}
