// Package format renders timing values for humans.
package format

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mpapenbr/racepace/pkg/model"
)

// LapTime formats seconds as M:SS.fff.
func LapTime(seconds *float64) string {
	if seconds == nil || !finite(*seconds) {
		return "--:--.---"
	}
	ms := decimal.NewFromFloat(*seconds).Round(3).Shift(3).IntPart()
	rest := ms % 60000
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, rest/1000, rest%1000)
}

// SectorTime formats seconds as SS.fff.
func SectorTime(seconds *float64) string {
	if seconds == nil || !finite(*seconds) {
		return "--.---"
	}
	return decimal.NewFromFloat(*seconds).StringFixed(3)
}

// Delta formats a time difference with explicit sign for non negative values.
func Delta(delta *float64) string {
	if delta == nil || !finite(*delta) {
		return "---"
	}
	d := decimal.NewFromFloat(*delta).Round(3)
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(3)
	}
	return d.StringFixed(3)
}

// DegradationPerLap formats a slope like +0.045s/lap.
func DegradationPerLap(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Round(3)
	sign := ""
	if d.Sign() >= 0 {
		sign = "+"
	}
	return sign + d.StringFixed(3) + "s/lap"
}

// RSquared formats the coefficient of determination with two decimals.
func RSquared(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// TyreAbbreviation returns the one letter tyre code.
func TyreAbbreviation(c model.Compound) string {
	switch c {
	case model.CompoundSoft:
		return "S"
	case model.CompoundMedium:
		return "M"
	case model.CompoundHard:
		return "H"
	case model.CompoundIntermediate:
		return "I"
	case model.CompoundWet:
		return "W"
	}
	if c == "" {
		return "?"
	}
	return string(c[0])
}

func Position(pos int) string {
	return fmt.Sprintf("P%d", pos)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
