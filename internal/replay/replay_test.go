package replay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/footmetricx/pitchctl/internal/adapters/http/api"
	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	service "github.com/footmetricx/pitchctl/internal/app"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/pkg/logger"
	"github.com/google/go-cmp/cmp"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestService(t *testing.T) *httptest.Server {
	t.Helper()
	p := pitchcontrol.DefaultParams()
	p.GridResolution = 5
	svc := service.New(service.WithParams(p), service.WithWorkerCount(4), service.WithQueueSize(1000))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)

	mux := http.NewServeMux()
	api.NewServer(svc, svc, 100).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateFrames(t *testing.T) {
	Convey("Given a seeded generator config", t, func() {
		cfg := &Config{MatchID: "gen", Frames: 50, FrameRate: 5, Seed: 42}

		Convey("When generating twice with the same seed", func() {
			a, err := GenerateFrames(context.Background(), cfg, &Stats{})
			So(err, ShouldBeNil)
			b, err := GenerateFrames(context.Background(), cfg, &Stats{})
			So(err, ShouldBeNil)

			Convey("Then both matches should be identical", func() {
				So(cmp.Diff(a, b), ShouldBeEmpty)
			})
		})

		Convey("When generating with another seed", func() {
			a, _ := GenerateFrames(context.Background(), cfg, &Stats{})
			other := *cfg
			other.Seed = 7
			b, _ := GenerateFrames(context.Background(), &other, &Stats{})

			Convey("Then the matches should differ", func() {
				So(cmp.Diff(a, b), ShouldNotBeEmpty)
			})
		})

		Convey("When inspecting the frames", func() {
			stats := &Stats{}
			frames, err := GenerateFrames(context.Background(), cfg, stats)
			So(err, ShouldBeNil)

			Convey("Then every frame should be a valid full match frame", func() {
				So(stats.FramesGenerated, ShouldEqual, 50)
				for i, f := range frames {
					So(f.FrameID, ShouldEqual, int64(i+1))
					So(f.MatchID, ShouldEqual, "gen")
					So(len(f.Home), ShouldEqual, playersPerTeam)
					So(len(f.Away), ShouldEqual, playersPerTeam)
					for _, p := range append(f.Home, f.Away...) {
						So(p.Position.X, ShouldBeBetweenOrEqual, 0.0, pitchLength)
						So(p.Position.Y, ShouldBeBetweenOrEqual, 0.0, pitchWidth)
					}
				}
				So(frames[0].HomeAttacks, ShouldEqual, "right")
				So(frames[49].HomeAttacks, ShouldEqual, "left")
				So(frames[5].TimestampMs, ShouldEqual, 1200)
			})
		})

		Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := GenerateFrames(ctx, cfg, &Stats{})

			Convey("Then generation should stop", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestFold(t *testing.T) {
	Convey("Given values around a limit", t, func() {
		So(fold(5, 10), ShouldEqual, 5)
		So(fold(-2, 10), ShouldEqual, 2)
		So(fold(12, 10), ShouldEqual, 8)
		So(fold(-30, 10), ShouldEqual, 10)
		So(fold(30, 10), ShouldEqual, 0)
	})
}

func TestVerifyDominance(t *testing.T) {
	Convey("Given dominance entries", t, func() {
		Convey("When ordered by share", func() {
			entries := []repository.DominanceEntry{{Rank: 1, Share: 70}, {Rank: 2, Share: 60}, {Rank: 2, Share: 60}}
			So(verifyDominance(entries), ShouldBeNil)
		})

		Convey("When a later entry has a higher share", func() {
			entries := []repository.DominanceEntry{{Rank: 1, Share: 50}, {Rank: 2, Share: 60}}
			So(errors.Is(verifyDominance(entries), ErrVerification), ShouldBeTrue)
		})

		Convey("When ranks go backwards", func() {
			entries := []repository.DominanceEntry{{Rank: 2, Share: 60}, {Rank: 1, Share: 50}}
			So(verifyDominance(entries), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running pitch-control service", t, func() {
		srv := newTestService(t)
		out := filepath.Join(t.TempDir(), "frames", "replay.json")
		cfg := &Config{
			BaseURL:     srv.URL,
			MatchID:     "replay-test",
			Frames:      40,
			FrameRate:   5,
			Seed:        3,
			Workers:     4,
			Top:         5,
			Timeout:     5 * time.Second,
			WaitTimeout: 20 * time.Second,
			OutputFile:  out,
		}

		Convey("When replaying a synthetic match", func() {
			report, err := Run(context.Background(), cfg)

			Convey("Then every frame should be processed and verified", func() {
				So(err, ShouldBeNil)
				So(report.Summary.MatchID, ShouldEqual, "replay-test")
				So(report.Summary.Frames, ShouldEqual, 40)
				So(report.Summary.InvalidFrames, ShouldEqual, 0)
				So(report.TimelineSize, ShouldEqual, 40)
				So(len(report.HomeTop), ShouldEqual, 5)
				So(len(report.AwayTop), ShouldEqual, 5)
				So(report.Stats.Accepted, ShouldEqual, 40)
				So(report.Stats.Failed, ShouldEqual, 0)
			})

			Convey("Then the generated frames should be written to disk", func() {
				info, statErr := os.Stat(out)
				So(statErr, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})

			Convey("When replaying the same match again", func() {
				again, err := Run(context.Background(), cfg)

				Convey("Then resubmitted frames should be acknowledged as duplicates", func() {
					So(err, ShouldBeNil)
					So(again.Stats.Accepted, ShouldEqual, 0)
					So(again.Stats.Duplicate, ShouldEqual, 40)
					So(again.Summary.Frames, ShouldEqual, 40)
				})
			})
		})

		Convey("When the match id is empty", func() {
			cfg.MatchID = ""
			cfg.OutputFile = ""
			cfg.Frames = 5
			_, err := Run(context.Background(), cfg)

			Convey("Then a replay id should be generated", func() {
				So(err, ShouldBeNil)
				So(cfg.MatchID, ShouldStartWith, "replay-")
			})
		})
	})

	Convey("Given no service listening", t, func() {
		cfg := &Config{BaseURL: "http://127.0.0.1:1", Frames: 1, Timeout: time.Second}

		Convey("Then the health check should fail", func() {
			_, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
