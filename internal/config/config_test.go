package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gosymint.yaml")
	src := "risch:\n  max_depth: 32\n  verify: false\nserver:\n  port: 9090\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Risch = RischConfig{MaxDepth: 32, Verify: false}
	want.Server.Port = 9090
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOSYMINT_RISCH_MAX_DEPTH", "7")
	cfg, err := Load(New(), "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Risch.MaxDepth != 7 {
		t.Errorf("want 7, got %d", cfg.Risch.MaxDepth)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoad_BadDepth(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GOSYMINT_RISCH_MAX_DEPTH", "0")
	if _, err := Load(New(), ""); err == nil {
		t.Error("expected an error for max_depth 0")
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "debug"
	l, err := cfg.Logger()
	if err != nil {
		t.Fatal(err)
	}
	if l.GetLevel() != log.DebugLevel {
		t.Errorf("want debug, got %s", l.GetLevel())
	}
	cfg.Log.Format = "xml"
	if _, err := cfg.Logger(); err == nil {
		t.Error("expected an error for an unknown format")
	}
	opts := cfg.Options(l)
	if opts.MaxDepth != cfg.Risch.MaxDepth || !opts.Verify {
		t.Errorf("options not copied: %+v", opts)
	}
}
