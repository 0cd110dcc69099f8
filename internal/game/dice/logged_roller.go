package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged dice rolling.
// All rolls are logged at debug level with expression, mode, dice values,
// modifier, and total.
//
// Roller also satisfies Source so coin flips and percentile checks draw from
// the same stream as the dice.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewLoggedRoller precondition violated: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// With returns a Roller that shares r's Source but logs with fields added.
func (r *Roller) With(fields ...zap.Field) *Roller {
	return &Roller{src: r.src, logger: r.logger.With(fields...)}
}

// Intn draws from the underlying Source.
//
// Precondition: n > 0.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Roll evaluates expr in the given mode and logs the result at debug level.
//
// Precondition: expr must come from Parse or Pool.
// Postcondition: result logged; returns RollResult or error.
func (r *Roller) Roll(expr Expression, mode Mode) (RollResult, error) {
	result, err := Roll(expr, r.src, mode)
	if err != nil {
		return RollResult{}, err
	}
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Stringer("mode", mode),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result, nil
}

// RollExpr parses expr and rolls it in normal mode, logging the result.
//
// Precondition: expr must be a valid dice expression string.
// Postcondition: Returns a RollResult or a parse/roll error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e, ModeNormal)
}

// MustRoll rolls expr and panics on error. Dice specs reaching the combat
// engine have been validated, so a failure here is a contract violation.
func (r *Roller) MustRoll(expr Expression, mode Mode) RollResult {
	result, err := r.Roll(expr, mode)
	if err != nil {
		panic("dice: MustRoll precondition violated: " + err.Error())
	}
	return result
}
