package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/workbook/internal/domain/types"
	"github.com/okian/workbook/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestApplyResult(t *testing.T) {
	Convey("Given an apply result with skipped events", t, func() {
		r := types.ApplyResult{Applied: 4, Ignored: 2, MissingSurface: 1, Dropped: 3}

		Convey("Then Skipped totals the non-applied events", func() {
			So(r.Skipped(), ShouldEqual, 6)
		})
	})
}

func TestSessionView_JSON(t *testing.T) {
	Convey("Given a session view without a score", t, func() {
		b, err := json.Marshal(types.SessionView{ID: "s1", ActivityID: "trace", State: "idle"})
		So(err, ShouldBeNil)

		Convey("Then the result is omitted", func() {
			So(string(b), ShouldNotContainSubstring, `"result"`)
			So(string(b), ShouldContainSubstring, `"activity_id":"trace"`)
		})
	})

	Convey("Given a scored session view", t, func() {
		b, err := json.Marshal(types.SessionView{ID: "s1", Result: &scoring.Result{Percent: 80, Stars: 3}})
		So(err, ShouldBeNil)
		So(string(b), ShouldContainSubstring, `"result":{"percent":80,"stars":3}`)
	})
}
