// Package pathfunc holds the path-cost policies driven by the IFT engine.
//
// A policy decides the cost a root starts with, whether a finalized pixel may
// offer a neighbor a better path, and what that path costs. The engine owns
// every buffer (costs, predecessors, labels); policies only read their own
// images and write the cost slice handed to them.
package pathfunc

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// MaxCost is the representable maximum cost; unreached pixels hold it and
// every cost computation saturates at it.
const MaxCost = float64(math.MaxInt32)

// ErrInvalidParameter is returned when a policy is built with out-of-range parameters
var ErrInvalidParameter = errors.New("invalid path function parameter")

// PathFunction is the contract between the IFT engine and a cost policy.
type PathFunction interface {
	// InitialCost is the cost a seed pixel is queued with
	InitialCost(p int) float64

	// RemoveRoot runs when p leaves the queue without a predecessor
	RemoveRoot(p int, value []float64)

	// Capable reports whether finalized p can possibly improve q
	Capable(p, q int, value []float64) bool

	// Propagate offers q the path through p across an arc of length dist and
	// commits value[q] when it is strictly cheaper
	Propagate(p, q int, dist float64, value []float64) bool

	// Increasing reports whether costs never decrease along a path
	Increasing() bool

	// CostRange bounds the spread between costs queued at the same time
	CostRange(maxDistance float64) float64
}

var validate = validator.New()

// saturate clamps a cost into [0, MaxCost]
func saturate(c float64) float64 {
	if c >= MaxCost || math.IsNaN(c) {
		return MaxCost
	}
	if c < 0 {
		return 0
	}
	return c
}

// validationError turns validator failures into ErrInvalidParameter errors
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s=%v violates %s=%s", ErrInvalidParameter, fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
}

func maxOf(data []float64) float64 {
	m := 0.0
	for _, v := range data {
		if v > m {
			m = v
		}
	}
	return m
}
