package generator

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidArgument marks caller mistakes: non-positive counts or
	// windows, probabilities outside [0,1].
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfiguration marks internally inconsistent tunables:
	// a bad A/B split or a broken continue-probability table.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// Params collects every tunable of a generation run in one place. Both the
// user generator and the event simulator take the same value; nothing is
// read from the environment below this layer.
type Params struct {
	UserCount         int
	RunDate           time.Time // normalized to midnight UTC
	HistoryWindowDays int
	PVerified         float64
	Seed              int64

	// A/B experiment knobs.
	ABRatio          float64 // fraction of users assigned to treatment, in (0,1)
	ABLift           float64 // additive delta on ABLiftTransition for treatment
	ABLiftTransition Transition

	// Activity knobs.
	SessionMean  float64 // Poisson mean sessions per user, >= 0
	ContinueProb map[Transition]float64

	// Workers bounds the simulation fan-out; 0 means one worker per CPU.
	Workers int
}

// DefaultParams returns the policy defaults for a run on the given date.
func DefaultParams(runDate time.Time) Params {
	return Params{
		UserCount:         1000,
		RunDate:           midnightUTC(runDate),
		HistoryWindowDays: 30,
		PVerified:         0.4,
		Seed:              42,
		ABRatio:           0.5,
		ABLift:            0.10,
		ABLiftTransition:  ItemViewToChatClick,
		SessionMean:       2.5,
		ContinueProb:      DefaultContinueProb(),
	}
}

// Validate fails fast before any generation starts: no partial output is
// ever produced from bad inputs.
func (p Params) Validate() error {
	if p.UserCount <= 0 {
		return fmt.Errorf("%w: user_count must be positive, got %d", ErrInvalidArgument, p.UserCount)
	}
	if p.HistoryWindowDays < 1 {
		return fmt.Errorf("%w: history_window_days must be >= 1, got %d", ErrInvalidArgument, p.HistoryWindowDays)
	}
	if p.PVerified < 0 || p.PVerified > 1 {
		return fmt.Errorf("%w: p_verified must be in [0,1], got %v", ErrInvalidArgument, p.PVerified)
	}
	if p.RunDate.IsZero() {
		return fmt.Errorf("%w: run_date is required", ErrInvalidArgument)
	}
	if p.ABRatio <= 0 || p.ABRatio >= 1 {
		return fmt.Errorf("%w: ab_ratio must be in (0,1), got %v", ErrInvalidConfiguration, p.ABRatio)
	}
	if p.SessionMean < 0 {
		return fmt.Errorf("%w: session_mean must be >= 0, got %v", ErrInvalidConfiguration, p.SessionMean)
	}
	if p.ABLiftTransition != "" {
		if _, ok := DefaultContinueProb()[p.ABLiftTransition]; !ok {
			return fmt.Errorf("%w: unknown ab_lift transition %q", ErrInvalidConfiguration, p.ABLiftTransition)
		}
	}
	for _, tr := range funnelTransitions {
		prob, ok := p.ContinueProb[tr]
		if !ok {
			return fmt.Errorf("%w: continue_prob table missing transition %q", ErrInvalidConfiguration, tr)
		}
		if prob < 0 || prob > 1 {
			return fmt.Errorf("%w: continue_prob[%s] must be in [0,1], got %v", ErrInvalidArgument, tr, prob)
		}
	}
	for tr := range p.ContinueProb {
		if _, ok := DefaultContinueProb()[tr]; !ok {
			return fmt.Errorf("%w: continue_prob table has unknown transition %q", ErrInvalidConfiguration, tr)
		}
	}
	return nil
}

func midnightUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
