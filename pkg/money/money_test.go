package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	a := New(1500.50)
	b := New(499.50)

	assert.True(t, a.Add(b).Equal(New(2000)))
	assert.True(t, a.Sub(b).Equal(New(1001)))
	assert.True(t, a.GreaterThan(b))
	assert.True(t, b.LessThan(a))
	assert.True(t, a.Mul(decimal.NewFromInt(2)).Equal(New(3001)))
}

func TestAnnualMonthly(t *testing.T) {
	monthly := New(2500)
	assert.True(t, monthly.Annual().Equal(New(30000)))
	assert.True(t, New(30000).Monthly().Equal(monthly))
}

func TestFromString(t *testing.T) {
	m, err := FromString("1234.56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", m.String())

	_, err = FromString("not money")
	assert.Error(t, err)
}

func TestRoundAndString(t *testing.T) {
	assert.Equal(t, "10.57", New(10.566).Round().String())
	assert.Equal(t, "0.00", Zero().String())
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{123456.7, "$123,456.70"},
		{1234567.8, "$1,234,567.80"},
		{-1234567.8, "-$1,234,567.80"},
		{-42.5, "-$42.50"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, New(c.in).Format(), "input %v", c.in)
	}
}
