// Package catalog describes the pages of the activity workbook and the static
// geometry baked into them.
package catalog

import (
	"fmt"

	"github.com/okian/workbook/internal/domain/geom"
	"github.com/okian/workbook/internal/domain/matching"
)

// Kind classifies a workbook page.
type Kind string

// Page kinds.
const (
	KindCover    Kind = "cover"
	KindTracing  Kind = "tracing"
	KindMatching Kind = "matching"
	KindSizes    Kind = "sizes"
)

// GuidePath is the path the child traces to bring the cat home.
const GuidePath = "M40 60 C160 40, 260 140, 360 120 C460 100, 520 200, 560 200"

// ViewBox is the size of a drawing surface in its local units.
type ViewBox struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Marker is a decoration placed on the drawing surface.
type Marker struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// Tracing is the static definition of a tracing page.
type Tracing struct {
	Path    string  `json:"path"`
	ViewBox ViewBox `json:"view_box"`
	Start   Marker  `json:"start"`
	Goal    Marker  `json:"goal"`

	curve *geom.Curve
}

// NewTracing parses path data into a tracing definition.
func NewTracing(path string, box ViewBox, start, goal Marker) (*Tracing, error) {
	c, err := geom.ParsePath(path)
	if err != nil {
		return nil, fmt.Errorf("tracing path: %w", err)
	}
	return &Tracing{Path: path, ViewBox: box, Start: start, Goal: goal, curve: c}, nil
}

// Curve returns the reference curve.
func (t *Tracing) Curve() *geom.Curve {
	return t.curve
}

// Sizes lists the animals drawn for the big-and-small page.
type Sizes struct {
	Big   []string `json:"big"`
	Small []string `json:"small"`
}

// Activity is one workbook page.
type Activity struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Kind    Kind            `json:"kind"`
	Tracing *Tracing        `json:"tracing,omitempty"`
	Board   *matching.Board `json:"board,omitempty"`
	Sizes   *Sizes          `json:"sizes,omitempty"`
}

// Catalog is an ordered, immutable list of pages.
type Catalog struct {
	pages []Activity
	index map[string]int
}

// New builds a catalog. Page ids must be unique and tracing pages must carry
// a parsed curve.
func New(pages ...Activity) (*Catalog, error) {
	c := &Catalog{
		pages: make([]Activity, len(pages)),
		index: make(map[string]int, len(pages)),
	}
	for i, p := range pages {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: page %d has no id", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate page id %q", ErrInvalidCatalog, p.ID)
		}
		if p.Kind == KindTracing && (p.Tracing == nil || p.Tracing.curve == nil) {
			return nil, fmt.Errorf("%w: tracing page %q has no curve", ErrInvalidCatalog, p.ID)
		}
		if p.Kind == KindMatching && p.Board == nil {
			return nil, fmt.Errorf("%w: matching page %q has no board", ErrInvalidCatalog, p.ID)
		}
		c.pages[i] = p
		c.index[p.ID] = i
	}
	return c, nil
}

// Len returns the number of pages.
func (c *Catalog) Len() int {
	return len(c.pages)
}

// List returns the pages in workbook order.
func (c *Catalog) List() []Activity {
	out := make([]Activity, len(c.pages))
	copy(out, c.pages)
	return out
}

// Get looks a page up by id.
func (c *Catalog) Get(id string) (Activity, bool) {
	i, ok := c.index[id]
	if !ok {
		return Activity{}, false
	}
	return c.pages[i], true
}

// Page returns the page at index, clamped to the first and last page the way
// the workbook's previous/next buttons behave.
func (c *Catalog) Page(index int) (Activity, int) {
	if len(c.pages) == 0 {
		return Activity{}, 0
	}
	index = max(0, min(index, len(c.pages)-1))
	return c.pages[index], index
}
