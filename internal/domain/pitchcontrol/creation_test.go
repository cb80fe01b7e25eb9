package pitchcontrol

import (
	"errors"
	"testing"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompareFrames(t *testing.T) {
	e := mustEngine()

	Convey("Given a frame compared with itself", t, func() {
		sc, err := e.CompareFrames(busyFrame(), busyFrame())
		So(err, ShouldBeNil)

		Convey("Then nothing should change", func() {
			So(sc.HomePctChange, ShouldEqual, 0)
			So(sc.CellsGained, ShouldEqual, 0)
			So(sc.CellsLost, ShouldEqual, 0)
			So(sc.MaxGain, ShouldEqual, 0)
			So(sc.MaxLoss, ShouldEqual, 0)
			So(sc.Original, ShouldResemble, sc.Modified)
		})
	})

	Convey("Given a home player making a forward run into space", t, func() {
		original := duelFrame(model.Vec2{X: 30, Y: 34}, model.Vec2{X: 90, Y: 34})
		modified := duelFrame(model.Vec2{X: 55, Y: 34}, model.Vec2{X: 90, Y: 34})

		wide := mustEngine(WithSaturationTime(30))
		sc, err := wide.CompareFrames(original, modified)
		So(err, ShouldBeNil)

		Convey("Then home should gain space", func() {
			So(sc.CellsGained, ShouldBeGreaterThan, 0)
			So(sc.MaxGain, ShouldBeGreaterThan, creationThreshold)
			So(sc.HomePctChange, ShouldBeGreaterThan, 0)
			So(sc.CellsLost, ShouldEqual, 0)
			So(sc.AreaGained, ShouldEqual, float64(sc.CellsGained))
			cols, rows := sc.Diff.Dims()
			So(cols*rows, ShouldEqual, sc.Original.Cells)
		})
	})

	Convey("Given an invalid modified frame", t, func() {
		bad := busyFrame()
		bad.Away = nil
		_, err := e.CompareFrames(busyFrame(), bad)
		So(errors.Is(err, ErrInvalidFrame), ShouldBeTrue)
	})
}
