package surface

import (
	"os"
	"path/filepath"
	"testing"

	"tradecheck/internal/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMapping = `
surfaces:
  pending_orders:
    source: "Pending Orders Table"
    labels:
      "Order": order_id
      "Symbol": symbol
      "Type": order_kind
      "Volume": volume
      "Price": entry_price
      "S/L": stop_loss
      "T/P": take_profit
      "P/L": profit_loss
    loss_markers: ["loss", "negative"]
  snackbar:
    source: "Snackbar"
    labels:
      "id": order_id
      "price": entry_price
`

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "surfaces.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistryLoadsMappings(t *testing.T) {
	r, err := NewRegistry(writeMapping(t, sampleMapping))
	require.NoError(t, err)

	m, ok := r.Mapping("pending_orders")
	require.True(t, ok)
	assert.Equal(t, "Pending Orders Table", m.Source)
	assert.ElementsMatch(t, []string{"pending_orders", "snackbar"}, r.Surfaces())
}

func TestRegistryRejectsUnknownCanonicalField(t *testing.T) {
	_, err := NewRegistry(writeMapping(t, `
surfaces:
  broken:
    labels:
      "TP": takeprofit
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field")
}

func TestRowMapsLabelsAndLossCue(t *testing.T) {
	r, err := NewRegistry(writeMapping(t, sampleMapping))
	require.NoError(t, err)
	m, _ := r.Mapping("pending_orders")

	fields, err := m.Row(map[string]string{
		"Order":  "48210553",
		"Symbol": "EURUSD",
		"P/L":    "4.20",
	}, map[string][]string{
		"P/L": {"cell", "loss"},
	})
	require.NoError(t, err)
	assert.Equal(t, "48210553", fields[order.FieldOrderID].Text)
	assert.True(t, fields[order.FieldProfitLoss].Negative)
	assert.False(t, fields[order.FieldSymbol].Negative)
}

func TestRowRejectsUnmappedLabel(t *testing.T) {
	r, err := NewRegistry(writeMapping(t, sampleMapping))
	require.NoError(t, err)
	m, _ := r.Mapping("snackbar")

	_, err = m.Row(map[string]string{"Swap": "0.00"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmapped label")
}

func TestRowLabelLookupIsCaseInsensitive(t *testing.T) {
	r, err := NewRegistry(writeMapping(t, sampleMapping))
	require.NoError(t, err)
	m, _ := r.Mapping("snackbar")

	fields, err := m.Row(map[string]string{"ID": "7"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "7", fields[order.FieldOrderID].Text)
}
