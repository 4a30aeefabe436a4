package matching_test

import (
	"errors"
	"testing"

	"github.com/okian/workbook/internal/domain/matching"
	. "github.com/smartystreets/goconvey/convey"
)

var animals = []matching.Pair{
	{ID: "dog", Item: "🦴", Target: "🐶"},
	{ID: "cat", Item: "🐟", Target: "🐱"},
	{ID: "duck", Item: "🍞", Target: "🦆"},
}

func TestBoard_ByTarget(t *testing.T) {
	Convey("Given the food board where every drop is kept", t, func() {
		b := matching.Board{Pairs: animals, Rule: matching.ByTarget}

		Convey("When a wrong drop is later corrected", func() {
			out, err := b.Evaluate([]matching.Move{
				{ItemID: "cat", TargetID: "dog"},
				{ItemID: "dog", TargetID: "dog"},
				{ItemID: "duck", TargetID: "cat"},
			})

			Convey("Then the last drop on each target wins", func() {
				So(err, ShouldBeNil)
				So(out.Answers, ShouldResemble, map[string]bool{"dog": true, "cat": false})
				So(out.Correct, ShouldEqual, 1)
				So(out.Total, ShouldEqual, 3)
				So(out.Complete, ShouldBeFalse)
			})
		})

		Convey("When every animal gets its food", func() {
			out, err := b.Evaluate([]matching.Move{
				{ItemID: "dog", TargetID: "dog"},
				{ItemID: "cat", TargetID: "cat"},
				{ItemID: "duck", TargetID: "duck"},
			})

			Convey("Then the board is complete", func() {
				So(err, ShouldBeNil)
				So(out.Complete, ShouldBeTrue)
			})
		})
	})
}

func TestBoard_ByItem(t *testing.T) {
	Convey("Given the shape board where each shape keeps its last choice", t, func() {
		b := matching.Board{Pairs: animals, Rule: matching.ByItem}

		out, err := b.Evaluate([]matching.Move{
			{ItemID: "dog", TargetID: "cat"},
			{ItemID: "cat", TargetID: "cat"},
		})

		So(err, ShouldBeNil)
		So(out.Answers, ShouldResemble, map[string]bool{"dog": false, "cat": true})
		So(out.Correct, ShouldEqual, 1)
	})
}

func TestBoard_CorrectOnly(t *testing.T) {
	Convey("Given the shadow board where only correct drops stick", t, func() {
		b := matching.Board{Pairs: animals, Rule: matching.CorrectOnly}

		out, err := b.Evaluate([]matching.Move{
			{ItemID: "dog", TargetID: "cat"},
			{ItemID: "cat", TargetID: "cat"},
			{ItemID: "dog", TargetID: "duck"},
		})

		So(err, ShouldBeNil)
		So(out.Answers, ShouldResemble, map[string]bool{"cat": true})
		So(out.Complete, ShouldBeFalse)
	})
}

func TestBoard_Errors(t *testing.T) {
	Convey("Given a board", t, func() {
		b := matching.Board{Pairs: animals, Rule: matching.ByTarget}

		Convey("When a move names an unknown id", func() {
			_, err := b.Evaluate([]matching.Move{{ItemID: "horse", TargetID: "dog"}})
			So(errors.Is(err, matching.ErrUnknownID), ShouldBeTrue)
			_, err = b.Evaluate([]matching.Move{{ItemID: "dog", TargetID: "barn"}})
			So(errors.Is(err, matching.ErrUnknownID), ShouldBeTrue)
		})

		Convey("When the rule is unknown", func() {
			b.Rule = "whatever"
			_, err := b.Evaluate([]matching.Move{{ItemID: "dog", TargetID: "dog"}})
			So(errors.Is(err, matching.ErrUnknownRule), ShouldBeTrue)
		})

		Convey("When there are no moves", func() {
			out, err := b.Evaluate(nil)
			So(err, ShouldBeNil)
			So(out.Correct, ShouldEqual, 0)
			So(out.Complete, ShouldBeFalse)
		})
	})
}
