package geom_test

import (
	"errors"
	"testing"

	"github.com/okian/workbook/internal/domain/geom"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePath(t *testing.T) {
	Convey("Given the workbook guide path", t, func() {
		c, err := geom.ParsePath(guidePath)

		Convey("Then it parses into a curve between its endpoints", func() {
			So(err, ShouldBeNil)
			So(c.Start(), ShouldResemble, geom.Pt(40, 60))
			So(c.End(), ShouldResemble, geom.Pt(560, 200))
		})
	})

	Convey("Given relative and shorthand commands", t, func() {
		c, err := geom.ParsePath("m10 10 h20 v20 l-20 0 z")

		Convey("Then they describe a closed square of perimeter 80", func() {
			So(err, ShouldBeNil)
			So(c.Start(), ShouldResemble, geom.Pt(10, 10))
			So(c.End(), ShouldResemble, geom.Pt(10, 10))
			So(c.Length(), ShouldAlmostEqual, 80, 1e-9)
		})
	})

	Convey("Given implicit lineto pairs after a moveto", t, func() {
		c, err := geom.ParsePath("M0,0 30,0 30,40")

		Convey("Then every extra pair becomes a line", func() {
			So(err, ShouldBeNil)
			So(c.Length(), ShouldAlmostEqual, 70, 1e-9)
		})
	})

	Convey("Given smooth curve commands", t, func() {
		c, err := geom.ParsePath("M0 0 C 0 10 10 10 10 0 S 20 -10 20 0 Q 25 5 30 0 T 40 0")

		Convey("Then the curve ends where the last command ends", func() {
			So(err, ShouldBeNil)
			So(c.End(), ShouldResemble, geom.Pt(40, 0))
		})
	})

	Convey("Given two sub-paths", t, func() {
		c, err := geom.ParsePath("M0 0 L10 0 M100 100 L110 100")

		Convey("Then the jump between them adds no length", func() {
			So(err, ShouldBeNil)
			So(c.Length(), ShouldAlmostEqual, 20, 1e-9)
			So(c.PointAt(15), ShouldResemble, geom.Pt(105, 100))
		})
	})

	Convey("Given invalid path data", t, func() {
		cases := []struct {
			d    string
			kind error
		}{
			{"", geom.ErrEmptyPath},
			{"   ", geom.ErrEmptyPath},
			{"L10 10", geom.ErrMissingMoveTo},
			{"M0 0 A 5 5 0 0 1 10 10", geom.ErrUnsupportedCommand},
			{"M0 0 L10", geom.ErrBadNumber},
			{"M0 0 C1 1 2 2", geom.ErrBadNumber},
		}
		for _, tc := range cases {
			_, err := geom.ParsePath(tc.d)
			So(errors.Is(err, tc.kind), ShouldBeTrue)
		}
	})

	Convey("Given MustParsePath with bad data", t, func() {
		So(func() { geom.MustParsePath("nope") }, ShouldPanic)
	})
}
