package adaptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	price, err := parsePrice(" 12.50 ")
	require.NoError(t, err)
	assert.Equal(t, 12.5, price)

	for _, raw := range []string{"", "abc", "Inf", "+Inf", "-inf", "Infinity", "NaN", "1e400"} {
		_, err := parsePrice(raw)
		assert.Error(t, err, raw)
	}
}
