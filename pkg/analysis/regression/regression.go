// Package regression provides the least squares fit used for lap time trends.
package regression

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("x and y differ in length")
	ErrEmptyInput     = errors.New("empty input")
)

// Result of an ordinary least squares fit y = Slope*x + Intercept.
type Result struct {
	Slope     float64
	Intercept float64
	// coefficient of determination
	RSquared float64
}

// LinearRegression fits y against x. Input without variance in x yields
// NaN values, callers have to treat them as unavailable.
func LinearRegression(x, y []float64) (Result, error) {
	if len(x) != len(y) {
		return Result{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) == 0 {
		return Result{}, ErrEmptyInput
	}
	intercept, slope := stat.LinearRegression(x, y, nil, false)
	return Result{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  stat.RSquared(x, y, nil, intercept, slope),
	}, nil
}
