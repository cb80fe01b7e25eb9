package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/footmetricx/pitchctl/internal/app"
	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// coarse keeps the engine fast in tests.
func coarse() service.Option {
	p := pitchcontrol.DefaultParams()
	p.GridResolution = 5
	return service.WithParams(p)
}

func frame(match string, id int64, homeX float64) model.Frame {
	return model.Frame{
		MatchID:   match,
		FrameID:   id,
		Timestamp: time.Duration(id) * 40 * time.Millisecond,
		Ball:      model.Vec2{X: 52.5, Y: 34},
		Home: []model.PlayerSample{
			{PlayerID: "h1", Position: model.Vec2{X: homeX, Y: 34}},
			{PlayerID: "h2", Position: model.Vec2{X: homeX - 10, Y: 20}},
		},
		Away: []model.PlayerSample{
			{PlayerID: "a1", Position: model.Vec2{X: 80, Y: 34}},
			{PlayerID: "a2", Position: model.Vec2{X: 90, Y: 50}},
		},
	}
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then operations should fail before Start", func() {
			f := frame("m1", 1, 30)
			_, _, err := svc.Compute(context.Background(), &f)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Submit(context.Background(), f)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.MatchSummary(context.Background(), "m1")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			So(svc.Matches(context.Background()), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})

		Convey("When starting and stopping repeatedly", func() {
			ctx := context.Background()
			for i := 0; i < 3; i++ {
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
				svc.Stop()
				svc.Stop()
			}

			Convey("Then it should end stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})

	Convey("Given invalid engine parameters", t, func() {
		p := pitchcontrol.DefaultParams()
		p.SigmoidWidth = 0
		svc := service.New(service.WithParams(p))

		Convey("Then Start should report a configuration error", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, pitchcontrol.ErrConfiguration), ShouldBeTrue)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})
}

func TestService_Compute(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(coarse())
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When computing a valid frame synchronously", func() {
			f := frame("m1", 1, 30)
			grid, summary, err := svc.Compute(ctx, &f)

			Convey("Then a grid and summary should be returned without storing", func() {
				So(err, ShouldBeNil)
				cols, rows := grid.Dims()
				So(cols, ShouldEqual, 21)
				So(rows, ShouldEqual, 14)
				So(summary.Cells, ShouldEqual, 21*14)
				_, err := svc.Frame(ctx, f.Key())
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When computing an invalid frame", func() {
			f := frame("m1", 1, 30)
			f.Away = nil
			_, _, err := svc.Compute(ctx, &f)

			Convey("Then the engine error should surface", func() {
				So(errors.Is(err, pitchcontrol.ErrInvalidFrame), ShouldBeTrue)
			})
		})

		Convey("When comparing two frames", func() {
			before := frame("m1", 1, 30)
			after := frame("m1", 1, 55)
			sc, err := svc.CompareFrames(ctx, &before, &after)

			Convey("Then home should have gained ground", func() {
				So(err, ShouldBeNil)
				So(sc.HomePctChange, ShouldBeGreaterThan, 0)
				So(sc.CellsGained, ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestService_Submit(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(coarse(), service.WithWorkerCount(4))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When submitting frames of a match", func() {
			for i := int64(1); i <= 10; i++ {
				dup, err := svc.Submit(ctx, frame("m1", i, 20+float64(i)*3))
				So(err, ShouldBeNil)
				So(dup, ShouldBeFalse)
			}
			bad := frame("m1", 11, 30)
			bad.Home = nil
			_, err := svc.Submit(ctx, bad)
			So(err, ShouldBeNil)

			processed := func() bool {
				sum, err := svc.MatchSummary(ctx, "m1")
				return err == nil && sum.Frames == 10 && sum.InvalidFrames == 1
			}

			Convey("Then every frame should be processed", func() {
				So(eventually(processed), ShouldBeTrue)

				res, err := svc.Frame(ctx, model.FrameKey{MatchID: "m1", FrameID: 3})
				So(err, ShouldBeNil)
				So(res.Grid, ShouldNotBeNil)

				flagged, err := svc.Frame(ctx, model.FrameKey{MatchID: "m1", FrameID: 11})
				So(err, ShouldBeNil)
				So(flagged.Invalid, ShouldBeTrue)
				So(flagged.Reason, ShouldEqual, pitchcontrol.ReasonEmptyTeam)
			})

			Convey("Then re-submitting a frame should be a duplicate", func() {
				dup, err := svc.Submit(ctx, frame("m1", 1, 23))
				So(err, ShouldBeNil)
				So(dup, ShouldBeTrue)
			})

			Convey("Then the timeline and rankings should cover the valid frames", func() {
				So(eventually(processed), ShouldBeTrue)

				points, err := svc.Timeline(ctx, "m1")
				So(err, ShouldBeNil)
				So(len(points), ShouldEqual, 10)

				top, err := svc.TopFrames(ctx, "m1", model.Home, 3)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].Share, ShouldBeGreaterThanOrEqualTo, top[2].Share)
				So(svc.Matches(ctx), ShouldResemble, []string{"m1"})

				stats := svc.GetStats()
				So(stats["storedFrames"], ShouldEqual, 11)
				So(stats["invalid"], ShouldEqual, int64(1))
			})
		})

		Convey("When a frame lacks a match id", func() {
			_, err := svc.Submit(ctx, frame("", 1, 30))
			So(errors.Is(err, service.ErrMissingMatch), ShouldBeTrue)
		})
	})
}

func TestService_Backpressure(t *testing.T) {
	Convey("Given a service with a tiny queue and one worker", t, func() {
		p := pitchcontrol.DefaultParams()
		p.GridResolution = 0.25
		svc := service.New(service.WithParams(p), service.WithQueueSize(1), service.WithWorkerCount(1))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When flooding it with frames", func() {
			var rejected int
			var rejectedKey int64
			for i := int64(0); i < 200; i++ {
				_, err := svc.Submit(ctx, frame("flood", i, 30))
				if errors.Is(err, service.ErrBackpressure) {
					rejected++
					rejectedKey = i
				}
			}

			Convey("Then some frames should be rejected and may be retried later", func() {
				So(rejected, ShouldBeGreaterThan, 0)
				So(eventually(func() bool {
					_, err := svc.Submit(ctx, frame("flood", rejectedKey, 30))
					return err == nil
				}), ShouldBeTrue)
			})
		})
	})
}

func TestService_Concurrency(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New(coarse(), service.WithWorkerCount(4))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		ctx := context.Background()

		Convey("When many goroutines submit and compute at once", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 100)
			for g := 0; g < 5; g++ {
				wg.Add(1)
				go func(g int) {
					defer wg.Done()
					match := fmt.Sprintf("m%d", g)
					for i := int64(0); i < 10; i++ {
						f := frame(match, i, 25+float64(i))
						if _, err := svc.Submit(ctx, f); err != nil {
							errs <- err
						}
						if _, _, err := svc.Compute(ctx, &f); err != nil {
							errs <- err
						}
					}
				}(g)
			}
			wg.Wait()
			close(errs)

			Convey("Then no call should fail and every match should be stored", func() {
				for err := range errs {
					So(err, ShouldBeNil)
				}
				So(eventually(func() bool { return len(svc.Matches(ctx)) == 5 }), ShouldBeTrue)
				So(eventually(func() bool { return svc.GetStats()["storedFrames"] == 50 }), ShouldBeTrue)
			})
		})
	})
}
