package logger_test

import (
	"context"
	"testing"

	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Get returns a usable logger", func() {
			l := logger.Get()
			So(l, ShouldNotBeNil)
			So(func() {
				l.Info(context.Background(), "hello", logger.String("k", "v"))
			}, ShouldNotPanic)
		})

		Convey("Named returns a scoped logger", func() {
			l := logger.Named("engine")
			So(l, ShouldNotBeNil)
			So(func() {
				l.Debug(context.Background(), "scoped", logger.Int("n", 1))
			}, ShouldNotPanic)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given the global level control", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("Known levels are accepted", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("Levels are case-insensitive and trimmed", func() {
			So(logger.SetLevelString("  DEBUG "), ShouldBeNil)
		})

		Convey("Unknown levels are rejected", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}
