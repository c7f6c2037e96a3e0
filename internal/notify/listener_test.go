package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tradecheck/internal/order"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventServer(t *testing.T, messages []string) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestCaptureOrderEvents(t *testing.T) {
	url := eventServer(t, []string{
		`{"event":"order_placed","order_id":"48210553","symbol":"EURUSD","side":"Buy","price":"1.08432"}`,
		`{"event":"order_filled","order_id":"48210554","symbol":"GBPUSD","profit_loss":"4.20","is_loss":true}`,
	})
	l, err := NewListener(url)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	set, warnings, err := l.Capture(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, SourceLabel, set.Source())

	first := set.At(0)
	assert.Equal(t, "48210553", first.OrderID())
	assert.Equal(t, "buy", first.Value(order.FieldDirection).String())

	pl, ok := set.At(1).Value(order.FieldProfitLoss).Decimal()
	require.True(t, ok)
	assert.Equal(t, "-4.2", pl.String(), "is_loss cue must flip the sign")
}

func TestCaptureSkipsInvalidPayloadsWithWarnings(t *testing.T) {
	url := eventServer(t, []string{
		`not json at all`,
		`{"event":"order_teleported","order_id":"1"}`, // unknown event type
		`{"event":"order_placed"}`,                    // missing order_id
		`{"event":"order_placed","order_id":"48210553"}`,
	})
	l, err := NewListener(url)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	set, warnings, err := l.Capture(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, warnings, 3)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "48210553", set.At(0).OrderID())
}

func TestListenerRequiresURL(t *testing.T) {
	_, err := NewListener("  ")
	assert.Error(t, err)
}
