package catalog

import "github.com/okian/workbook/internal/domain/matching"

// Default returns the workbook shipped with the service.
func Default() *Catalog {
	trace, err := NewTracing(GuidePath,
		ViewBox{Width: 600, Height: 420},
		Marker{Label: "🐱", X: 10, Y: 380},
		Marker{Label: "🏠", X: 520, Y: 330},
	)
	if err != nil {
		panic(err)
	}

	c, err := New(
		Activity{ID: "cover", Title: "Workbook Ceria", Kind: KindCover},
		Activity{ID: "trace", Title: "Tracing & Penilaian", Kind: KindTracing, Tracing: trace},
		Activity{ID: "match-food", Title: "Pasangkan Hewan & Makanan", Kind: KindMatching, Board: &matching.Board{
			Rule: matching.ByTarget,
			Pairs: []matching.Pair{
				{ID: "dog", Item: "🦴", Target: "🐶"},
				{ID: "cat", Item: "🐟", Target: "🐱"},
				{ID: "duck", Item: "🍞", Target: "🦆"},
			},
		}},
		Activity{ID: "shape", Title: "Cocokkan Bentuk", Kind: KindMatching, Board: &matching.Board{
			Rule: matching.ByItem,
			Pairs: []matching.Pair{
				{ID: "circle", Item: "⚪", Target: "⚽", Label: "Lingkaran"},
				{ID: "square", Item: "🟦", Target: "📒", Label: "Kotak"},
				{ID: "triangle", Item: "🔺", Target: "🍕", Label: "Segitiga"},
				{ID: "rect", Item: "🟨", Target: "🛏️", Label: "Persegi Panjang"},
			},
		}},
		Activity{ID: "shadow", Title: "Temukan Bayangan", Kind: KindMatching, Board: &matching.Board{
			Rule: matching.CorrectOnly,
			Pairs: []matching.Pair{
				{ID: "rhino", Item: "🦏", Target: "🦏"},
				{ID: "car", Item: "🚗", Target: "🚗"},
				{ID: "book", Item: "📚", Target: "📚"},
			},
		}},
		Activity{ID: "sizes", Title: "Besar & Kecil", Kind: KindSizes, Sizes: &Sizes{
			Big:   []string{"🐘", "🦒", "🐳", "🦏", "🐂", "🐫"},
			Small: []string{"🐭", "🐹", "🐇", "🐥", "🐸", "🐢"},
		}},
	)
	if err != nil {
		panic(err)
	}
	return c
}
