package service

import (
	"os"
	"testing"
	"time"

	"github.com/heroku/grokstats/testing/testlog"
)

func TestNewNoConfig(t *testing.T) {
	setupStandardConfig(t)

	s := New(nil)

	if s.Logger == nil {
		t.Fatal("standard logger not configured")
	}
	if s.MetricsProvider == nil {
		t.Fatal("standard metrics provider not configured")
	}
	if s.App != "test-app" || s.Deploy != "test" {
		t.Fatalf("got app %q deploy %q", s.App, s.Deploy)
	}
}

func TestNewCustomConfig(t *testing.T) {
	setupStandardConfig(t)

	os.Setenv("TEST_VAL", "1m")
	defer os.Unsetenv("TEST_VAL")

	var cfg struct {
		Val time.Duration `env:"TEST_VAL"`
	}
	New(&cfg)

	if cfg.Val != time.Minute {
		t.Fatalf("cfg.Val = %v want %v", cfg.Val, time.Minute)
	}
}

func TestNewMetricsPrefix(t *testing.T) {
	setupStandardConfig(t)

	os.Setenv("METRICS_PREFIX", "grokstats")
	os.Setenv("DYNO", "web.1")
	defer os.Unsetenv("METRICS_PREFIX")
	defer os.Unsetenv("DYNO")

	if got := New(nil).MetricsPrefix; got != "grokstats.server" {
		t.Fatalf("want grokstats.server, got %q", got)
	}
	if got := New(nil, CustomMetricsSuffix("browse")).MetricsPrefix; got != "grokstats.browse" {
		t.Fatalf("want grokstats.browse, got %q", got)
	}
	if got := New(nil, SkipMetricsSuffix()).MetricsPrefix; got != "grokstats" {
		t.Fatalf("want grokstats, got %q", got)
	}
}

func TestNewPrometheusHandler(t *testing.T) {
	setupStandardConfig(t)

	os.Setenv("METRICS_BACKEND", "prometheus")
	defer os.Unsetenv("METRICS_BACKEND")

	if New(nil).MetricsHandler == nil {
		t.Fatal("want a metrics handler")
	}
}

func TestMetricsSuffixFromDyno(t *testing.T) {
	for dyno, want := range map[string]string{
		"":          "",
		"web.1":     "server",
		"worker.2":  "worker",
		"run.12345": "run",
	} {
		if got := metricsSuffixFromDyno(dyno); got != want {
			t.Errorf("metricsSuffixFromDyno(%q) = %q, want %q", dyno, got, want)
		}
	}
}

func TestReportPanic(t *testing.T) {
	logger, hook := testlog.New()

	defer func() {
		if p := recover(); p == nil {
			t.Fatal("expected ReportPanic to repanic")
		}

		entries := hook.Entries()
		if want, got := 1, len(entries); want != got {
			t.Fatalf("want hook entries to be %d, got %d", want, got)
		}
		if want, got := "test message", entries[0].Message; want != got {
			t.Errorf("want hook entry message to be %q, got %q", want, got)
		}
	}()

	func() {
		defer ReportPanic(logger)

		panic("test message")
	}()
}

func setupStandardConfig(t *testing.T) {
	os.Setenv("APP_NAME", "test-app")
	os.Setenv("DEPLOY", "test")
	os.Setenv("DEBUG_PORT", "0")

	t.Cleanup(func() {
		os.Unsetenv("APP_NAME")
		os.Unsetenv("DEPLOY")
		os.Unsetenv("DEBUG_PORT")
	})
}
