package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.005, 1.01},
		{2.675, 2.68},
		{22.2772, 22.28},
		{39.2, 39.2},
		{-1.005, -1.01},
		{0, 0},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "in=%v", tt.in)
	}
}

func TestRoundInt(t *testing.T) {
	assert.Equal(t, 3, RoundInt(2.5))
	assert.Equal(t, 2, RoundInt(2.49))
	assert.Equal(t, -3, RoundInt(-2.5))
	assert.Equal(t, 89, RoundInt(89.25))
	assert.Equal(t, 0, RoundInt(math.NaN()))
}
