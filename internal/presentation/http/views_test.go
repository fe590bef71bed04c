package httppresentation

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoneyKeepsFullPrecision(t *testing.T) {
	cases := map[string]string{
		"0":      "0.00",
		"19.9":   "19.90",
		"57":     "57.00",
		"1.500":  "1.50",
		"0.125":  "0.125",
		"3.3333": "3.3333",
		"-1.005": "-1.005",
	}
	for in, want := range cases {
		assert.Equal(t, json.Number(want), money(decimal.RequireFromString(in)), in)
	}
	assert.Equal(t, json.Number("0.00"), money(decimal.Decimal{}))
}
