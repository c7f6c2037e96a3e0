package order

import (
	"testing"

	"tradecheck/internal/normalize"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleBasicRow(t *testing.T) {
	rec, err := Assemble(Fields{
		FieldOrderID:    {Text: "48210553"},
		FieldSymbol:     {Text: "EURUSD"},
		FieldDirection:  {Text: "Buy"},
		FieldEntryPrice: {Text: "1.08432"},
		FieldVolume:     {Text: "0.50 lots"},
	}, "Pending Orders Table")
	require.NoError(t, err)

	assert.Equal(t, "48210553", rec.OrderID())
	assert.Equal(t, "Pending Orders Table", rec.Source)
	price, ok := rec.Value(FieldEntryPrice).Decimal()
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.RequireFromString("1.08432")))
	assert.False(t, rec.Value(FieldTakeProfit).Observed())
}

func TestAssembleMissingOrderID(t *testing.T) {
	_, err := Assemble(Fields{FieldSymbol: {Text: "EURUSD"}}, "Snackbar")
	var incomplete *IncompleteRecordError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, "Snackbar", incomplete.Source)
}

func TestAssemblePropagatesFormatError(t *testing.T) {
	_, err := Assemble(Fields{
		FieldOrderID:    {Text: "X1"},
		FieldEntryPrice: {Text: "one point five"},
	}, "Trade Confirmation")
	var fe *normalize.FormatError
	require.ErrorAs(t, err, &fe)
}

func TestAssembleLenientKeepsUnparsable(t *testing.T) {
	rec, err := AssembleLenient(Fields{
		FieldOrderID:    {Text: "X1"},
		FieldEntryPrice: {Text: "one point five"},
	}, "Trade Confirmation")
	require.NoError(t, err)
	assert.Equal(t, normalize.KindInvalid, rec.Value(FieldEntryPrice).Kind())

	// identity failures stay fatal even in lenient mode
	_, err = AssembleLenient(Fields{FieldSymbol: {Text: "EURUSD"}}, "Trade Confirmation")
	var incomplete *IncompleteRecordError
	require.ErrorAs(t, err, &incomplete)
}

func TestAssembleProfitLossSignHint(t *testing.T) {
	rec, err := Assemble(Fields{
		FieldOrderID:    {Text: "X2"},
		FieldProfitLoss: {Text: "(4.20)", Negative: true},
	}, "Order History")
	require.NoError(t, err)
	pl, ok := rec.Value(FieldProfitLoss).Decimal()
	require.True(t, ok)
	assert.Equal(t, "-4.2", pl.String())
}

func TestCaptureSkipsIncompleteRowsWithWarning(t *testing.T) {
	set, warnings, err := Capture("Order History", []Fields{
		{FieldOrderID: {Text: "A1"}, FieldSymbol: {Text: "EURUSD"}},
		{FieldSymbol: {Text: "GBPUSD"}}, // still rendering, no id yet
		{FieldOrderID: {Text: "A2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	require.Len(t, warnings, 1)
	var incomplete *IncompleteRecordError
	assert.ErrorAs(t, warnings[0], &incomplete)
}

func TestObservationSetRejectsForeignSource(t *testing.T) {
	rec, err := Assemble(Fields{FieldOrderID: {Text: "A1"}}, "Snackbar")
	require.NoError(t, err)
	_, err = NewObservationSet("Order History", []Record{rec})
	assert.Error(t, err)
}

func TestByOrderIDReportsDuplicates(t *testing.T) {
	set, _, err := Capture("Pending Orders Table", []Fields{
		{FieldOrderID: {Text: "D1"}},
		{FieldOrderID: {Text: "D1"}},
		{FieldOrderID: {Text: "D2"}},
	})
	require.NoError(t, err)
	idx, dupes := set.ByOrderID()
	assert.Len(t, idx, 2)
	assert.Equal(t, []string{"D1"}, dupes)
}

func TestFieldByName(t *testing.T) {
	f, ok := FieldByName("take_profit")
	require.True(t, ok)
	assert.Equal(t, FieldTakeProfit, f)
	_, ok = FieldByName("takeprofit")
	assert.False(t, ok)
}
