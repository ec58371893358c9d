package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderRequest_MonthlyPriceIsNumber(t *testing.T) {
	prev := decimal.MarshalJSONWithoutQuotes
	decimal.MarshalJSONWithoutQuotes = false
	t.Cleanup(func() { decimal.MarshalJSONWithoutQuotes = prev })

	req := CreateOrderRequest{
		NumberOfMonths: 3,
		MonthlyPrice:   decimal.RequireFromString("20000.50"),
		LinkUUID:       "link-1",
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"numberOfMonths":3,"monthlyPrice":20000.5,"linkUUID":"link-1"}`, string(data))

	var back CreateOrderRequest
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, req.MonthlyPrice.Equal(back.MonthlyPrice))
}
