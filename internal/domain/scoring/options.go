package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSamples sets the number of curve samples. Values below 2 are ignored.
func WithSamples(n int) Option {
	return func(s *Scorer) {
		if n >= 2 {
			s.samples = n
		}
	}
}

// WithToleranceRadius sets the hit radius. Non-positive values are ignored.
func WithToleranceRadius(r float64) Option {
	return func(s *Scorer) {
		if r > 0 {
			s.toleranceRadius = r
		}
	}
}
