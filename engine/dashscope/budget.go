package dashscope

import (
	"fmt"
	"time"
)

// Budget bounds a polling loop: a fixed interval between ticks and a ceiling
// on attempts, on elapsed wall-clock time, or on both (whichever hits first).
type Budget struct {
	Interval    time.Duration
	MaxAttempts int
	MaxWait     time.Duration
}

// AttemptBudget stops after n status queries.
func AttemptBudget(interval time.Duration, n int) Budget {
	return Budget{Interval: interval, MaxAttempts: n}
}

// WallClockBudget stops once maxWait has elapsed since the first tick.
func WallClockBudget(interval, maxWait time.Duration) Budget {
	return Budget{Interval: interval, MaxWait: maxWait}
}

func (b Budget) Validate() error {
	if b.Interval < 0 {
		return fmt.Errorf("%w: poll interval must not be negative", ErrInvalidRequest)
	}
	if b.MaxAttempts < 0 || b.MaxWait < 0 {
		return fmt.Errorf("%w: poll ceiling must not be negative", ErrInvalidRequest)
	}
	if b.MaxAttempts == 0 && b.MaxWait == 0 {
		return fmt.Errorf("%w: poll budget needs max attempts or max wait", ErrInvalidRequest)
	}
	return nil
}

// Exhausted reports whether another tick is out of budget.
func (b Budget) Exhausted(attempts int, elapsed time.Duration) bool {
	if b.MaxAttempts > 0 && attempts >= b.MaxAttempts {
		return true
	}
	if b.MaxWait > 0 && elapsed >= b.MaxWait {
		return true
	}
	return false
}

func (b Budget) String() string {
	switch {
	case b.MaxAttempts > 0 && b.MaxWait > 0:
		return fmt.Sprintf("%d attempts or %s (every %s)", b.MaxAttempts, b.MaxWait, b.Interval)
	case b.MaxAttempts > 0:
		return fmt.Sprintf("%d attempts (every %s)", b.MaxAttempts, b.Interval)
	default:
		return fmt.Sprintf("%s (every %s)", b.MaxWait, b.Interval)
	}
}
