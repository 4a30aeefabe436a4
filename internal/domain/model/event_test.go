package model_test

import (
	"errors"
	"testing"

	"github.com/okian/workbook/internal/domain/geom"
	"github.com/okian/workbook/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseKind(t *testing.T) {
	convey.Convey("Given client event type names", t, func() {
		convey.Convey("When they are canonical or DOM aliases", func() {
			cases := map[string]model.EventKind{
				"press":        model.KindPress,
				"PointerDown":  model.KindPress,
				" touchstart ": model.KindPress,
				"move":         model.KindMove,
				"pointermove":  model.KindMove,
				"release":      model.KindRelease,
				"pointerup":    model.KindRelease,
				"leave":        model.KindLeave,
				"pointerleave": model.KindLeave,
			}

			convey.Convey("Then they map to the capture kinds", func() {
				for in, want := range cases {
					got, err := model.ParseKind(in)
					convey.So(err, convey.ShouldBeNil)
					convey.So(got, convey.ShouldEqual, want)
				}
			})
		})

		convey.Convey("When the name is unknown", func() {
			_, err := model.ParseKind("wheel")

			convey.Convey("Then it is rejected", func() {
				convey.So(errors.Is(err, model.ErrUnknownEventKind), convey.ShouldBeTrue)
			})
		})
	})
}

func TestSurfaceRect(t *testing.T) {
	convey.Convey("Given a surface rectangle", t, func() {
		r := &model.SurfaceRect{Left: 12, Top: 34, Width: 600, Height: 420}
		origin, ok := r.Origin()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(origin, convey.ShouldResemble, geom.Pt(12, 34))
	})

	convey.Convey("Given a missing surface", t, func() {
		var r *model.SurfaceRect
		_, ok := r.Origin()
		convey.So(ok, convey.ShouldBeFalse)
	})

	convey.Convey("Given a batch with a default surface", t, func() {
		batchSurface := &model.SurfaceRect{Left: 1, Top: 2}
		eventSurface := &model.SurfaceRect{Left: 5, Top: 6}
		b := model.Batch{Surface: batchSurface}

		convey.Convey("Then events without their own surface use the batch one", func() {
			convey.So(b.SurfaceFor(model.PointerEvent{}), convey.ShouldEqual, batchSurface)
			convey.So(b.SurfaceFor(model.PointerEvent{Surface: eventSurface}), convey.ShouldEqual, eventSurface)
		})
	})
}
