package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFormatter(t *testing.T) {
	_, err := newMoneyFormatter("BRL", "pt-BR")
	require.NoError(t, err)

	_, err = newMoneyFormatter("NOPE", "pt-BR")
	assert.ErrorContains(t, err, "parse currency")

	_, err = newMoneyFormatter("BRL", "not a locale!")
	assert.ErrorContains(t, err, "parse locale")
}

func TestMoneyFormatter_Money(t *testing.T) {
	f, err := newMoneyFormatter("USD", "en-US")
	require.NoError(t, err)

	out := f.Money(decimal.RequireFromString("1234.5"))
	assert.Contains(t, out, "$")
	assert.Contains(t, out, "234")

	assert.Contains(t, f.Money(decimal.NewFromInt(-20)), "-")
}

func TestMoneyFormatter_Percent(t *testing.T) {
	f, err := newMoneyFormatter("USD", "en-US")
	require.NoError(t, err)
	assert.Equal(t, "85.0%", f.Percent(decimal.NewFromInt(85)))
}

func TestParseNonNegative(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0", false},
		{"0,00", "0", false},
		{"4200.50", "4200.5", false},
		{"12,345", "12.35", false},
		{"-1", "", true},
		{"abc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseNonNegative(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
