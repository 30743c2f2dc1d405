package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReload(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		contents *string
		ok       bool
		err      bool
		debounce int
	}{
		{"missing", nil, false, false, 0},
		{"empty", ptr(""), false, false, 0},
		{"whitespace", ptr("\n"), true, false, 150},
		{"valid", ptr("debounce = 42\n"), true, false, 42},
		{"invalid", ptr("debounce = -1\n"), false, true, 0},
		{"unknown key", ptr("speed = 1\n"), false, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".toml")
			if tt.contents != nil {
				if err := os.WriteFile(path, []byte(*tt.contents), 0644); err != nil {
					t.Fatal(err)
				}
			}
			profile, ok, err := reload(path)
			if (err != nil) != tt.err {
				t.Fatalf("reload error = %v, want error %v", err, tt.err)
			}
			if ok != tt.ok {
				t.Fatalf("reload ok = %v, want %v", ok, tt.ok)
			}
			if ok && profile.Debounce != tt.debounce {
				t.Errorf("debounce = %d, want %d", profile.Debounce, tt.debounce)
			}
		})
	}
}

func ptr(s string) *string {
	return &s
}
