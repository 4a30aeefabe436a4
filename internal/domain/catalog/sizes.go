package catalog

import (
	"fmt"
	"math/rand/v2"
)

// Choice is the button a child presses on the big-and-small page.
type Choice string

// Choices.
const (
	ChoiceBig   Choice = "besar"
	ChoiceSmall Choice = "kecil"
)

// SizesRound is one big animal shown beside one small animal.
type SizesRound struct {
	Big   string `json:"big"`
	Small string `json:"small"`
}

// Answer is what the page says back after a choice.
type Answer struct {
	Choice Choice `json:"choice"`
	Animal string `json:"animal"`
	Label  string `json:"label"`
}

// Round draws one big and one small animal. A nil rng uses the shared
// source.
func (s *Sizes) Round(rng *rand.Rand) (SizesRound, error) {
	if s == nil || len(s.Big) == 0 || len(s.Small) == 0 {
		return SizesRound{}, ErrNoAnimals
	}
	pick := rand.IntN
	if rng != nil {
		pick = rng.IntN
	}
	return SizesRound{Big: s.Big[pick(len(s.Big))], Small: s.Small[pick(len(s.Small))]}, nil
}

// Answer names the animal behind choice.
func (r SizesRound) Answer(choice Choice) (Answer, error) {
	switch choice {
	case ChoiceBig:
		return Answer{Choice: choice, Animal: r.Big, Label: "BESAR"}, nil
	case ChoiceSmall:
		return Answer{Choice: choice, Animal: r.Small, Label: "KECIL"}, nil
	default:
		return Answer{}, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
}
