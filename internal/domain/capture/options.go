package capture

// Option applies a configuration option to a Session.
type Option func(*Session)

// WithMaxPoints caps the number of stored points. Zero or negative means no
// limit.
func WithMaxPoints(n int) Option {
	return func(s *Session) {
		s.maxPoints = n
	}
}
