package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := "[storage]\ntype = \"file\"\ndir = " + `"` + filepath.ToSlash(filepath.Join(dir, "data")) + `"` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestStatusesCommand(t *testing.T) {
	out, err := run(t, "", "statuses", "--search", "not", "--category", "4xx")
	require.NoError(t, err)
	require.Contains(t, out, `Showing 1 results for "not"`)
	require.Contains(t, out, "404")
	require.NotContains(t, out, "500")

	_, err = run(t, "", "statuses", "--category", "6xx")
	require.Error(t, err)
}

func TestStatusesNoResults(t *testing.T) {
	out, err := run(t, "", "statuses", "--search", "zzz")
	require.NoError(t, err)
	require.Equal(t, "Showing 0 results for \"zzz\"\n", out)
}

func TestPresetsLifecycle(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "", "-c", cfg, "presets", "list")
	require.NoError(t, err)
	require.Contains(t, out, "No saved filters.")

	out, err = run(t, "", "-c", cfg, "presets", "save", "errors", "--category", "5xx")
	require.NoError(t, err)
	require.Contains(t, out, `Saved filter "errors" at index 0`)

	_, err = run(t, "", "-c", cfg, "presets", "save", "ok", "--search", "ok")
	require.NoError(t, err)

	out, err = run(t, "", "-c", cfg, "presets", "list")
	require.NoError(t, err)
	require.Contains(t, out, "errors")
	require.Contains(t, out, "5xx")

	out, err = run(t, "", "-c", cfg, "presets", "apply", "1")
	require.NoError(t, err)
	require.Contains(t, out, `Showing 1 results for "ok"`)
	require.Contains(t, out, "200")

	out, err = run(t, "n\n", "-c", cfg, "presets", "delete", "0")
	require.NoError(t, err)
	require.Contains(t, out, "Cancelled.")

	out, err = run(t, "y\n", "-c", cfg, "presets", "delete", "0")
	require.NoError(t, err)
	require.Contains(t, out, `Deleted filter "errors"`)

	out, err = run(t, "", "-c", cfg, "presets", "list")
	require.NoError(t, err)
	require.NotContains(t, out, "errors")
	require.Contains(t, out, "ok")
}

func TestPresetsErrors(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, "", "-c", cfg, "presets", "save", "")
	require.Error(t, err)

	_, err = run(t, "", "-c", cfg, "presets", "apply", "3")
	require.Error(t, err)

	_, err = run(t, "", "-c", cfg, "presets", "delete", "x", "--yes")
	require.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sv.toml")
	out, err := run(t, "", "-c", path, "config", "init")
	require.NoError(t, err)
	require.Contains(t, out, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `listen = ":8080"`)

	_, err = run(t, "", "-c", path, "config", "init")
	require.Error(t, err, "init must not overwrite")
}
