package calculator

import (
	"math"

	"MASentinel/internal/model"
)

// RollingSMA returns the trailing mean over window for every index of values.
// The first window-1 elements are undefined. A window <= 0 yields nil.
// The running sum is compensated, and a window of identical values yields that value exactly.
func RollingSMA(values []float64, window int) []model.NullFloat {
	if window <= 0 {
		return nil
	}
	out := make([]model.NullFloat, len(values))
	var acc kahanSum
	same := 0
	for i, v := range values {
		acc.add(v)
		if i >= window {
			acc.add(-values[i-window])
		}
		if i > 0 && v == values[i-1] {
			same++
		} else {
			same = 1
		}
		if i < window-1 {
			continue
		}
		if same >= window {
			out[i] = model.Some(v)
			continue
		}
		out[i] = model.Some(acc.value() / float64(window))
	}
	return out
}

// kahanSum is a Neumaier compensated running sum.
type kahanSum struct {
	sum, comp float64
}

func (k *kahanSum) add(v float64) {
	t := k.sum + v
	if math.Abs(k.sum) >= math.Abs(v) {
		k.comp += (k.sum - t) + v
	} else {
		k.comp += (v - t) + k.sum
	}
	k.sum = t
}

func (k *kahanSum) value() float64 {
	return k.sum + k.comp
}

// CountDefined returns how many elements of xs hold a value.
func CountDefined(xs []model.NullFloat) int {
	n := 0
	for _, x := range xs {
		if x.Valid {
			n++
		}
	}
	return n
}
