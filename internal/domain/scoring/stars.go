package scoring

// Star tier lower bounds, inclusive.
const (
	threeStarPercent = 80
	twoStarPercent   = 50
	oneStarPercent   = 25
)

// Stars maps a coverage percent to 0..3 stars. A nil percent means no score
// has been computed yet and earns 0 stars.
func Stars(percent *int) int {
	if percent == nil {
		return 0
	}
	return StarsFor(*percent)
}

// StarsFor maps a computed percent to 0..3 stars.
func StarsFor(percent int) int {
	switch {
	case percent >= threeStarPercent:
		return 3
	case percent >= twoStarPercent:
		return 2
	case percent >= oneStarPercent:
		return 1
	default:
		return 0
	}
}
