package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToWei(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{1, "1000000000000000000"},
		{0.1, "100000000000000000"},
		{0.000001, "1000000000000"},
		{12.5, "12500000000000000000"},
		{0, "0"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToWei(c.amount).String(), "amount %v", c.amount)
	}
}

func TestFromWei(t *testing.T) {
	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, 1.5, FromWei(wei))
	assert.Equal(t, 0.0, FromWei(nil))
	assert.Equal(t, 0.1, FromWei(ToWei(0.1)))
}

func TestFormat(t *testing.T) {
	wei, _ := new(big.Int).SetString("1230000000000000000", 10)
	assert.Equal(t, "1.23", FormatWei(wei))
	assert.Equal(t, "60", FormatGwei(big.NewInt(60_000_000_000)))
}

func TestGweiToWei(t *testing.T) {
	assert.Equal(t, "50000000000", GweiToWei(50).String())
}

func TestScalePct(t *testing.T) {
	assert.Equal(t, int64(25200), ScalePct(big.NewInt(21000), 120).Int64())
	assert.Equal(t, int64(60_000_000_000), ScalePct(GweiToWei(50), 120).Int64())
}
