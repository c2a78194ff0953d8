package takeoff

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDivisorFor(t *testing.T) {
	for _, name := range []string{"BGDA", "BSUP", "BMED", "BINF", "BDER", "BIZQ", "BSUP/MED", " bsup/med "} {
		assert.Equal(t, 2, DivisorFor(name), name)
	}
	for _, name := range []string{"PATA 0", "PATA 0.0", "PATA 1.5", "PATA 3", "PATA 3.0", "PATA 4.5", "PATA 6", "PATA 6.0", "PATA 7.5", "PATA 9", "PATA 9.0", "pata 7.5"} {
		assert.Equal(t, 4, DivisorFor(name), name)
	}
	// exact vocabulary, no prefix or pattern matching
	for _, name := range []string{"", "TORNILLO", "PATA", "PATA 12", "PATA 1.50", "BSUPX", "B SUP", "PATA  3"} {
		assert.Equal(t, 1, DivisorFor(name), name)
	}
}

func TestToNumberOrZero(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{nil, 0},
		{12.5, 12.5},
		{float32(0.5), 0.5},
		{7, 7},
		{int64(-3), -3},
		{uint8(4), 4},
		{" 3.25 ", 3.25},
		{"", 0},
		{"abc", 0},
		{"3,5", 0},
		{[]byte("8"), 8},
		{"NaN", 0},
		{"Inf", 0},
		{math.Inf(-1), 0},
		{true, 0},
		{map[string]any{}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToNumberOrZero(tt.in), "%#v", tt.in)
	}
}
