package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/KusumaMurthy109/Elysian/internal/config"
)

func TestDefaults(t *testing.T) {
	Convey("Given no file or environment overrides", t, func() {
		cfg, err := config.Load()

		Convey("Then defaults are applied", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.SessionTimeoutSeconds, ShouldEqual, 300)
			So(cfg.KFactor, ShouldEqual, 32)
			So(cfg.CommitQueueSize, ShouldEqual, 1024)
			So(cfg.CommitWorkers, ShouldBeGreaterThan, 0)
			So(cfg.DataDir, ShouldBeEmpty)
			So(cfg.UnsplashAccessKey, ShouldBeEmpty)
		})
	})
}

func TestFileAndEnvLayering(t *testing.T) {
	Convey("Given a YAML file and an environment override", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := "addr: \":9090\"\nlog_level: debug\ncommit_workers: 3\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)

		t.Setenv("ELYSIAN_CONFIG", path)
		t.Setenv("ELYSIAN_COMMIT_WORKERS", "7")
		t.Setenv("ELYSIAN_K_FACTOR", "24")

		cfg, err := config.Load()

		Convey("Then file values override defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.LogLevel, ShouldEqual, "debug")
		})

		Convey("Then env values override the file", func() {
			So(cfg.CommitWorkers, ShouldEqual, 7)
			So(cfg.KFactor, ShouldEqual, 24)
		})

		Convey("Then untouched fields keep defaults", func() {
			So(cfg.SessionTimeoutSeconds, ShouldEqual, 300)
		})
	})

	Convey("Given a config file that does not exist", t, func() {
		t.Setenv("ELYSIAN_CONFIG", "/nonexistent/config.yaml")

		_, err := config.Load()

		Convey("Then loading fails with the load sentinel", func() {
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestValidation(t *testing.T) {
	Convey("Given an invalid session timeout", t, func() {
		t.Setenv("ELYSIAN_SESSION_TIMEOUT_SECONDS", "0")

		_, err := config.Load()

		Convey("Then loading fails with the invalid sentinel", func() {
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a zero commit queue size", t, func() {
		t.Setenv("ELYSIAN_COMMIT_QUEUE_SIZE", "0")

		_, err := config.Load()

		So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
	})
}
