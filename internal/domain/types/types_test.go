package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleBody = `{
  "match_id": "m1",
  "frame_id": 12,
  "timestamp_ms": 480,
  "ball": {"x": 52.5, "y": 34},
  "home_attacks": "left",
  "home": [{"player_id": "h1", "team": "a", "position": {"x": 10, "y": 34}, "velocity": {"x": 1, "y": 0}}],
  "away": [{"player_id": "a1", "position": {"x": 95, "y": 34}, "velocity": {"x": 0, "y": 0}}],
  "include_grid": true
}`

func TestFramePayload(t *testing.T) {
	Convey("Given a compute request body", t, func() {
		var req ComputeRequest
		So(json.Unmarshal([]byte(sampleBody), &req), ShouldBeNil)

		Convey("Then embedded frame fields should decode", func() {
			So(req.IncludeGrid, ShouldBeTrue)
			So(req.FrameID, ShouldEqual, 12)
		})

		Convey("When converting to the model", func() {
			f, err := req.ToModel()

			Convey("Then enums and units should be translated", func() {
				So(err, ShouldBeNil)
				So(f.HomeAttacks, ShouldEqual, model.AttacksLeft)
				So(f.Timestamp, ShouldEqual, 480*time.Millisecond)
				So(f.Home[0].Team, ShouldEqual, model.Home)
				So(f.Away[0].Team, ShouldEqual, model.Away)
				So(f.Home[0].Velocity, ShouldResemble, model.Vec2{X: 1})
			})

			Convey("Then converting back should preserve the frame", func() {
				back := FromModel(&f)
				again, err := back.ToModel()
				So(err, ShouldBeNil)
				So(again, ShouldResemble, f)
			})
		})
	})

	Convey("Given unknown enum values", t, func() {
		bad := Frame{HomeAttacks: "up"}
		_, err := bad.ToModel()
		So(err, ShouldNotBeNil)

		bad = Frame{Away: []Player{{Team: "referee"}}}
		_, err = bad.ToModel()
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "away[0]")
	})
}

func TestFromGrid(t *testing.T) {
	Convey("Given an engine grid", t, func() {
		f := &model.Frame{
			Home: []model.PlayerSample{{Position: model.Vec2{X: 1, Y: 1}}},
			Away: []model.PlayerSample{{Position: model.Vec2{X: 3, Y: 1}}},
		}
		g, _, err := pitchcontrol.Compute(f, 1, model.Pitch{Length: 4, Width: 2})
		So(err, ShouldBeNil)

		wire := FromGrid(g)
		So(wire.Cols, ShouldEqual, 4)
		So(wire.Rows, ShouldEqual, 2)
		So(wire.X, ShouldResemble, []float64{0.5, 1.5, 2.5, 3.5})
		So(len(wire.Values), ShouldEqual, 2)
		So(wire.Values[0][0], ShouldEqual, g.At(0, 0))
		So(FromGrid(nil), ShouldBeNil)
	})
}
