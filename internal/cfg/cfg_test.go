package cfg_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tesselslate/mousefollow/internal/cfg"
	"github.com/tesselslate/mousefollow/internal/log"
	"github.com/tesselslate/mousefollow/internal/res"
)

func TestDefault(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/state")
	profile := cfg.Default()
	if profile.DebounceDuration() != cfg.DefaultDebounce {
		t.Errorf("default debounce = %v, want %v", profile.DebounceDuration(), cfg.DefaultDebounce)
	}
	if profile.WarpOnStart || profile.RequireEwmh || profile.Log.Console {
		t.Errorf("default profile enables optional behavior: %+v", profile)
	}
	if profile.LogLevel() != log.INFO {
		t.Errorf("default log level = %d, want INFO", profile.LogLevel())
	}
	if profile.Log.File != "/state/mousefollow/mousefollow.log" {
		t.Errorf("default log file = %q", profile.Log.File)
	}
}

func TestParseEmbeddedDefault(t *testing.T) {
	profile, err := cfg.Parse(res.DefaultConfig)
	if err != nil {
		t.Fatal(err)
	}
	if profile != cfg.Default() {
		t.Errorf("embedded config = %+v, want %+v", profile, cfg.Default())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		check   func(cfg.Profile) bool
		wantErr string
	}{
		{
			name:  "empty file keeps defaults",
			input: "",
			check: func(p cfg.Profile) bool { return p == cfg.Default() },
		},
		{
			name:  "debounce",
			input: "debounce = 300",
			check: func(p cfg.Profile) bool { return p.DebounceDuration() == 300*time.Millisecond },
		},
		{
			name:  "zero debounce",
			input: "debounce = 0",
			check: func(p cfg.Profile) bool { return p.DebounceDuration() == 0 },
		},
		{
			name:  "log section",
			input: "[log]\nlevel = \"debug\"\nfile = \"\"\nconsole = true",
			check: func(p cfg.Profile) bool {
				return p.LogLevel() == log.DEBUG && p.Log.File == "" && p.Log.Console
			},
		},
		{
			name:  "flags",
			input: "warp_on_start = true\nrequire_ewmh = true",
			check: func(p cfg.Profile) bool { return p.WarpOnStart && p.RequireEwmh },
		},
		{name: "negative debounce", input: "debounce = -1", wantErr: "negative debounce"},
		{name: "huge debounce", input: "debounce = 60000", wantErr: "debounce too long"},
		{name: "bad level", input: "[log]\nlevel = \"loud\"", wantErr: "unknown log level"},
		{name: "unknown key", input: "debounse = 10", wantErr: "unknown config option"},
		{name: "wrong type", input: "debounce = \"fast\"", wantErr: "parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := cfg.Parse([]byte(tt.input))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Parse(%q) error = %v, want %q", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !tt.check(profile) {
				t.Errorf("Parse(%q) = %+v", tt.input, profile)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	profile, err := cfg.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if profile != cfg.Default() {
		t.Errorf("Load(missing) = %+v, want defaults", profile)
	}
}

func TestMakeProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mousefollow", "config.toml")
	if err := cfg.MakeProfile(path); err != nil {
		t.Fatal(err)
	}
	profile, err := cfg.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if profile != cfg.Default() {
		t.Errorf("Load(new profile) = %+v, want defaults", profile)
	}
	if err := cfg.MakeProfile(path); err == nil {
		t.Error("MakeProfile overwrote an existing config file")
	}
}

func TestGetPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/config")
	path, err := cfg.GetPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/config/mousefollow/config.toml" {
		t.Errorf("GetPath() = %q", path)
	}
}

func TestWatcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	watcher, err := cfg.NewWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := make(chan cfg.Profile, 8)
	errch := make(chan error, 8)
	go watcher.Run(ctx, ch, errch)

	// An empty file is skipped rather than reloaded as the defaults, so the
	// truncation at the start of each save is never delivered.
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("debounce = 42\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case profile := <-ch:
		if profile.Debounce != 42 {
			t.Fatalf("first reload has debounce %d, want 42", profile.Debounce)
		}
	case err := <-errch:
		t.Fatalf("reload failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing config file")
	}

	// Drain any duplicate reloads from the first write.
	time.Sleep(50 * time.Millisecond)
	for len(ch) > 0 {
		<-ch
	}

	if err := os.WriteFile(path, []byte("debounce = -5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case profile := <-ch:
			// A late duplicate of the previous reload may arrive first.
			if profile.Debounce == -5 {
				t.Fatal("invalid config was delivered")
			}
			continue
		case err := <-errch:
			if !strings.Contains(err.Error(), "negative debounce") {
				t.Fatalf("reload error = %v", err)
			}
		case <-timeout:
			t.Fatal("no error after writing invalid config file")
		}
		break
	}
}
