package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gophersatwork/adsmeta"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app     *app
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	outputs map[string]string
	runs    []string
}

// newTestEnv returns an app whose Inspector runs canned helper output and
// keeps stream writes in memory.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	env := &testEnv{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		outputs: make(map[string]string),
	}
	launcher := adsmeta.LauncherFunc(func(executable, target string) (io.ReadCloser, error) {
		env.runs = append(env.runs, executable+" "+target)
		return io.NopCloser(strings.NewReader(env.outputs[target])), nil
	})
	env.app = &app{
		fs:     afero.NewMemMapFs(),
		stdout: env.stdout,
		stderr: env.stderr,
		newInspector: func(opts ...adsmeta.Option) (*adsmeta.Inspector, error) {
			opts = append(opts,
				adsmeta.WithLauncher(launcher),
				adsmeta.WithStreamStore(adsmeta.NewFsStreamStore(afero.NewMemMapFs())),
			)
			return adsmeta.New(opts...)
		},
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	root := e.app.rootCmd()
	root.SetArgs(args)
	return root.Execute()
}

// fixture creates dir/f.txt with contents "abc" and one lads line for it.
func fixture(t *testing.T, env *testEnv) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("abc"), 0o644))
	env.outputs[dir] = fmt.Sprintf("\r\nLADS - Freeware version 4.10\r\n\r\n%10d  %s:%s\r\n\r\n", 26, file, "Zone.Identifier")
	return file
}

func TestCountCommand(t *testing.T) {
	env := newTestEnv(t)
	file := fixture(t, env)

	require.NoError(t, env.run("count", file, file))
	assert.Equal(t, fmt.Sprintf("1\t%s\n1\t%s\n", file, file), env.stdout.String())
	assert.Len(t, env.runs, 1, "the second query is served from the cache")
	assert.True(t, strings.HasPrefix(env.runs[0], "lads.exe "))
}

func TestStreamsCommand(t *testing.T) {
	env := newTestEnv(t)
	file := fixture(t, env)

	require.NoError(t, env.run("streams", file))
	assert.Equal(t, file+"\tZone.Identifier\t26\n", env.stdout.String())
}

func TestSummaryCommand(t *testing.T) {
	env := newTestEnv(t)
	file := fixture(t, env)

	require.NoError(t, env.run("summary", file))
	assert.Contains(t, env.stdout.String(), "1 ADSs:")
	assert.Contains(t, env.stdout.String(), file+":Zone.Identifier (26 bytes)")
}

func TestDigestCommand(t *testing.T) {
	env := newTestEnv(t)
	file := fixture(t, env)

	require.NoError(t, env.run("digest", file))
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72  "+file+"\n", env.stdout.String())

	env.stdout.Reset()
	require.NoError(t, env.run("digest", "--algo", "sha1", file))
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d  "+file+"\n", env.stdout.String())

	assert.Error(t, env.run("digest", "--algo", "md2", file))
}

func TestFieldsCommand(t *testing.T) {
	env := newTestEnv(t)
	file := fixture(t, env)

	require.NoError(t, env.run("fields", file))
	out := env.stdout.String()
	assert.Contains(t, out, file+"\t\"count\"\tok\t\"1\"\n")
	assert.Contains(t, out, file+"\t\"MD5\"\tok\t\"900150983cd24fb0d6963f7d28e17f72\"\n")
	assert.Contains(t, out, file+"\t\"stream_Zone_Identifier\"\tempty\t\n")
}

func TestConfigAndFlags(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, afero.WriteFile(env.app.fs, "/cfg.json", []byte(`{"helper":"streams"}`), 0o644))
	file := filepath.Join(t.TempDir(), "f.txt")

	require.NoError(t, env.run("--config", "/cfg.json", "--set", `streamsPath=C:\bin\streams.exe`, "count", file))
	assert.Equal(t, adsmeta.Streams, env.app.ins.Helper().Kind)
	require.Len(t, env.runs, 1)
	assert.True(t, strings.HasPrefix(env.runs[0], `C:\bin\streams.exe `), env.runs[0])
	assert.Equal(t, "0\t"+file+"\n", env.stdout.String())

	env.stdout.Reset()
	require.NoError(t, env.run("--config", "/cfg.json", "--helper", "lads", "-v", "count", file))
	assert.Equal(t, adsmeta.LADS, env.app.ins.Helper().Kind)
	assert.Contains(t, env.stderr.String(), "level=DEBUG")
}

func TestInvalidSettings(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(t.TempDir(), "f.txt")

	err := env.run("--helper", "dir", "count", file)
	assert.ErrorIs(t, err, adsmeta.ErrUnknownHelper)

	err = env.run("--set", "logLevel=loud", "count", file)
	assert.ErrorContains(t, err, "invalid log level")

	err = env.run("--config", "/missing.json", "count", file)
	assert.Error(t, err)

	assert.Empty(t, env.runs)
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "delayed", statusText(adsmeta.StatusDelayed))
	assert.Equal(t, "no such field", statusText(adsmeta.StatusNoSuchField))
	assert.Equal(t, "file error", statusText(adsmeta.StatusFileError))
	assert.Equal(t, "empty", statusText(adsmeta.StatusFieldEmpty))
	assert.Equal(t, "ok", statusText(adsmeta.Status(adsmeta.TypeString)))
	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, `"3"`, formatValue(3))
}
