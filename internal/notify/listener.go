// Package notify captures push-notification order events over a websocket
// feed and turns them into an observation set, so notification contents can
// be reconciled against what the tables show.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tradecheck/internal/logger"
	"tradecheck/internal/order"

	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// orderEventSchema is the wire contract for one push notification. Payloads
// that fail validation are counted as warnings, not silently dropped:
// a malformed feed is a data-quality bug worth seeing.
const orderEventSchema = `{
  "type": "object",
  "required": ["event", "order_id"],
  "properties": {
    "event": {"type": "string", "enum": ["order_placed", "order_filled", "order_cancelled", "order_expired"]},
    "order_id": {"type": "string", "minLength": 1},
    "symbol": {"type": "string"},
    "side": {"type": "string"},
    "order_type": {"type": "string"},
    "price": {"type": "string"},
    "volume": {"type": "string"},
    "stop_loss": {"type": "string"},
    "take_profit": {"type": "string"},
    "profit_loss": {"type": "string"},
    "is_loss": {"type": "boolean"}
  }
}`

// SourceLabel names this surface in reconciliation diagnostics.
const SourceLabel = "Push Notification"

const defaultReadTimeout = 30 * time.Second

type Listener struct {
	url    string
	schema *jsonschema.Schema
}

func NewListener(url string) (*Listener, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("notify: websocket url is required")
	}
	schema, err := jsonschema.CompileString("order_event.json", orderEventSchema)
	if err != nil {
		return nil, fmt.Errorf("notify: compile event schema: %w", err)
	}
	return &Listener{url: url, schema: schema}, nil
}

// Capture connects to the feed and collects up to count order events,
// returning them as an observation set. Invalid payloads come back as
// warnings alongside incomplete-record warnings from assembly. Returns
// when count events were captured, the context ends, or the read timeout
// elapses.
func (l *Listener) Capture(ctx context.Context, count int) (order.ObservationSet, []error, error) {
	if count <= 0 {
		return order.ObservationSet{}, nil, fmt.Errorf("notify: event count must be positive")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		return order.ObservationSet{}, nil, fmt.Errorf("notify: dial %s: %w", l.url, err)
	}
	defer conn.Close()

	var (
		rows     []order.Fields
		warnings []error
	)
	deadline := time.Now().Add(defaultReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	for len(rows) < count {
		select {
		case <-ctx.Done():
			return order.ObservationSet{}, warnings, ctx.Err()
		default:
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return order.ObservationSet{}, warnings, fmt.Errorf("notify: read event %d: %w", len(rows)+1, err)
		}
		row, err := l.parseEvent(msg)
		if err != nil {
			warnings = append(warnings, err)
			logger.Warnf("notify: skipping event: %v", err)
			continue
		}
		rows = append(rows, row)
	}
	set, assembleWarnings, err := order.Capture(SourceLabel, rows)
	warnings = append(warnings, assembleWarnings...)
	return set, warnings, err
}

func (l *Listener) parseEvent(msg []byte) (order.Fields, error) {
	var payload any
	if err := json.Unmarshal(msg, &payload); err != nil {
		return nil, fmt.Errorf("notify: event is not json: %w", err)
	}
	if err := l.schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("notify: event failed schema: %w", err)
	}
	doc := gjson.ParseBytes(msg)
	negative := doc.Get("is_loss").Bool()
	fields := order.Fields{
		order.FieldOrderID: {Text: doc.Get("order_id").String()},
	}
	put := func(f order.Field, path string, neg bool) {
		if v := doc.Get(path); v.Exists() && v.String() != "" {
			fields[f] = order.RawField{Text: v.String(), Negative: neg}
		}
	}
	put(order.FieldSymbol, "symbol", false)
	put(order.FieldDirection, "side", false)
	put(order.FieldOrderKind, "order_type", false)
	put(order.FieldEntryPrice, "price", false)
	put(order.FieldVolume, "volume", false)
	put(order.FieldStopLoss, "stop_loss", false)
	put(order.FieldTakeProfit, "take_profit", false)
	put(order.FieldProfitLoss, "profit_loss", negative)
	return fields, nil
}
