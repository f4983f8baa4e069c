package rating

// Params holds every tunable of the rating computation. The margin and
// underdog coefficients are empirically tuned, not derived from rating-system
// theory; they are kept here rather than as package constants so leagues can
// override them through configuration and tests can pin them explicitly.
type Params struct {
	// Rating scale bounds (DUPR-style).
	DefaultRating float64
	MinRating     float64
	MaxRating     float64

	// KFactor scales the base swing per match.
	KFactor float64
	// Spread is the logistic divisor of the expected-score curve. The
	// classical Elo value is 400; a divisor of 2 compresses outcome
	// probabilities onto the 2.0-8.0 scale.
	Spread float64

	// Margin multiplier: base at a 1-point win, per extra point, clamped.
	MarginBase     float64
	MarginPerPoint float64
	MarginMin      float64
	MarginMax      float64

	// Per-player performance multiplier (doubles only).
	PerformanceWeight float64
	PerformanceMin    float64
	PerformanceMax    float64

	// Underdog multiplier, team level.
	UnderdogTeamCoeff float64
	// Underdog multiplier, individual level (offset from DefaultRating).
	WinnerIndividualCoeff float64
	WinnerIndividualMin   float64
	WinnerIndividualMax   float64
	LoserIndividualCoeff  float64
	LoserIndividualMin    float64
	LoserIndividualMax    float64
	// Clamps on the combined team*individual underdog multiplier.
	WinnerCombinedMin float64
	WinnerCombinedMax float64
	LoserCombinedMin  float64
	LoserCombinedMax  float64
}

// DefaultParams returns the production tuning.
func DefaultParams() Params {
	return Params{
		DefaultRating: 3.5,
		MinRating:     2.0,
		MaxRating:     8.0,

		KFactor: 0.1,
		Spread:  2.0,

		MarginBase:     0.7,
		MarginPerPoint: 0.075,
		MarginMin:      0.5,
		MarginMax:      1.5,

		PerformanceWeight: 0.25,
		PerformanceMin:    0.6,
		PerformanceMax:    1.4,

		UnderdogTeamCoeff:     0.10,
		WinnerIndividualCoeff: 0.15,
		WinnerIndividualMin:   0.8,
		WinnerIndividualMax:   1.2,
		LoserIndividualCoeff:  0.45,
		LoserIndividualMin:    0.5,
		LoserIndividualMax:    1.5,
		WinnerCombinedMin:     0.7,
		WinnerCombinedMax:     1.5,
		LoserCombinedMin:      0.5,
		LoserCombinedMax:      1.6,
	}
}

// Clamp bounds x to [lo, hi]. Every multiplier in the rating and form engines
// is clamped at its own stage before being combined, which bounds the maximum
// single-match swing no matter how extreme the inputs are.
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
