package domain

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

// roundContext rounds half away from zero at 34 digits of precision.
var roundContext = func() *apd.Context {
	ctx := apd.BaseContext.WithPrecision(34)
	ctx.Rounding = apd.RoundHalfUp
	return ctx
}()

// Round2 rounds to two decimal places. The value goes through its shortest
// decimal representation first, so 1.005 rounds to 1.01 rather than the
// binary-float result of 1.00. Non-finite input returns 0.
func Round2(v float64) float64 {
	return roundTo(v, 2)
}

// RoundInt rounds to the nearest integer, halves away from zero.
func RoundInt(v float64) int {
	return int(roundTo(v, 0))
}

func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}

	var d apd.Decimal
	if _, err := d.SetFloat64(v); err != nil {
		return 0
	}

	var out apd.Decimal
	if _, err := roundContext.Quantize(&out, &d, -places); err != nil {
		return v
	}

	f, err := out.Float64()
	if err != nil {
		return v
	}
	return f
}
