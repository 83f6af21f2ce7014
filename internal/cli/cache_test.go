package cli

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/config"
)

func TestCacheDir(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	tests := []struct {
		name string
		dir  string
		want string
	}{
		{"default under XDG cache home", "", filepath.Join(xdg, appName)},
		{"configured dir wins", "/tmp/kintree-renders", "/tmp/kintree-renders"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Render.CacheDir = tt.dir
			got, err := cacheDir(cfg)
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("cacheDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewCache(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		noCache  bool
		wantFile bool
	}{
		{"enabled", true, false, true},
		{"--no-cache", true, true, false},
		{"disabled in config", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Render.Cache = tt.enabled
			cfg.Render.CacheDir = t.TempDir()

			c := newCache(cfg, tt.noCache)
			defer c.Close()

			_, isFile := c.(*cache.FileCache)
			if isFile != tt.wantFile {
				t.Errorf("newCache() = %T, want FileCache: %v", c, tt.wantFile)
			}
		})
	}
}
