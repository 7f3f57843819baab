package datalog

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

var limitsValidator = validator.New()

// FeatureFlags gates optional behaviors of the engine (spec §5). Regex
// support is not a flag: it is always disallowed (spec §3, §9).
type FeatureFlags struct {
	// RejectBlockRulesAndFacts, when set, causes any non-authority block
	// carrying facts or rules to be rejected before fixpoint begins,
	// instead of being evaluated. Authority blocks are exempt.
	RejectBlockRulesAndFacts bool
}

// Limits bounds the resources a single authorization may consume (spec
// §5, §6). Crossing MaxFacts or MaxIterations is fatal; MaxTime bounds
// the wall-clock deadline of the whole computation.
type Limits struct {
	MaxFacts      int           `validate:"gt=0"`
	MaxIterations int           `validate:"gt=0"`
	MaxTime       time.Duration `validate:"gt=0"`
	Flags         FeatureFlags
}

// DefaultLimits returns conservative resource bounds suitable for a
// small, well-formed authorization program.
func DefaultLimits() Limits {
	return Limits{
		MaxFacts:      1000,
		MaxIterations: 100,
		MaxTime:       2 * time.Millisecond,
	}
}

// Validate reports whether the limits are well-formed (all bounds
// strictly positive).
func (l Limits) Validate() error {
	if err := limitsValidator.Struct(l); err != nil {
		return errors.Join(ErrInvalidLimits, err)
	}
	return nil
}

// ErrInvalidLimits wraps any validation failure returned by
// Limits.Validate.
var ErrInvalidLimits = errors.New("datalog: invalid limits")
