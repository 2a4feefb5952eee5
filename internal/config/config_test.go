// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/logsim/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func TestParse_defaults(t *testing.T) {
	c, err := config.Parse(nil, env(nil))
	require.NoError(t, err)
	if diff := cmp.Diff(config.Default(), c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_fileAndEnv(t *testing.T) {
	src := []byte(`
listen: 127.0.0.1:9000
log_level: debug
max_compile_inputs: 8
library: [gates.hdl, adders.hdl]
redis:
  addr: localhost:6379
  db: 2
`)
	c, err := config.Parse(src, env(map[string]string{
		"LOGSIM_WORKERS":      "3",
		"LOGSIM_REDIS_PREFIX": "test",
		"LOGSIM_LOG_LEVEL":    "warn",
	}))
	require.NoError(t, err)

	want := &config.Config{
		Listen:           "127.0.0.1:9000",
		LogLevel:         "warn",
		MaxCompileInputs: 8,
		Workers:          3,
		Library:          []string{"gates.hdl", "adders.hdl"},
		Redis:            config.Redis{Addr: "localhost:6379", DB: 2, Prefix: "test"},
	}
	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, slog.LevelWarn, c.Level())
	assert.Len(t, c.Options(nil, nil), 4)
}

func TestParse_errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		env  map[string]string
	}{
		{"unknown key", "colour: blue\n", nil},
		{"bad yaml", "listen: [\n", nil},
		{"bad level", "log_level: loud\n", nil},
		{"too many inputs", "max_compile_inputs: 30\n", nil},
		{"negative workers", "", map[string]string{"LOGSIM_WORKERS": "-1"}},
		{"not a number", "", map[string]string{"LOGSIM_REDIS_DB": "two"}},
		{"empty listen", "listen: ' '\n", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tc.src), env(tc.env))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o644))
	t.Setenv("LOGSIM_LISTEN", ":9999")

	c, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Workers)
	assert.Equal(t, ":9999", c.Listen)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
