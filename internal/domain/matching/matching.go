// Package matching checks answers on the workbook's pairing pages: dragging
// food to animals, choosing the real object for a shape, and dropping objects
// on their shadows.
package matching

import "fmt"

// Rule decides how a move is recorded.
type Rule string

// Recording rules.
const (
	// ByTarget keeps the last item dropped on each target; any drop counts.
	ByTarget Rule = "by_target"
	// ByItem keeps the last target chosen for each item; wrong choices are
	// kept as wrong answers.
	ByItem Rule = "by_item"
	// CorrectOnly records a drop only when the item belongs to the target.
	CorrectOnly Rule = "correct_only"
)

// Pair is one correct association. ID identifies both the item and its
// target slot; Item and Target are display labels.
type Pair struct {
	ID     string `json:"id"`
	Item   string `json:"item"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Move places the item with id ItemID on the target slot with id TargetID.
type Move struct {
	ItemID   string `json:"item_id"`
	TargetID string `json:"target_id"`
}

// Outcome summarises a sequence of moves.
type Outcome struct {
	// Answers maps the recorded key (target id for ByTarget/CorrectOnly, item
	// id for ByItem) to whether the recorded answer is correct.
	Answers  map[string]bool `json:"answers"`
	Correct  int             `json:"correct"`
	Total    int             `json:"total"`
	Complete bool            `json:"complete"`
}

// Board is a pairing page.
type Board struct {
	Pairs []Pair `json:"pairs"`
	Rule  Rule   `json:"rule"`
}

// Evaluate replays moves in order and reports the resulting answers.
func (b Board) Evaluate(moves []Move) (Outcome, error) {
	known := make(map[string]struct{}, len(b.Pairs))
	for _, p := range b.Pairs {
		known[p.ID] = struct{}{}
	}

	answers := make(map[string]bool, len(b.Pairs))
	for i, m := range moves {
		if _, ok := known[m.ItemID]; !ok {
			return Outcome{}, fmt.Errorf("%w: move %d item %q", ErrUnknownID, i, m.ItemID)
		}
		if _, ok := known[m.TargetID]; !ok {
			return Outcome{}, fmt.Errorf("%w: move %d target %q", ErrUnknownID, i, m.TargetID)
		}
		correct := m.ItemID == m.TargetID
		switch b.Rule {
		case ByTarget:
			answers[m.TargetID] = correct
		case ByItem:
			answers[m.ItemID] = correct
		case CorrectOnly:
			if correct {
				answers[m.TargetID] = true
			}
		default:
			return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownRule, b.Rule)
		}
	}

	out := Outcome{Answers: answers, Total: len(b.Pairs)}
	for _, ok := range answers {
		if ok {
			out.Correct++
		}
	}
	out.Complete = out.Total > 0 && out.Correct == out.Total
	return out, nil
}
