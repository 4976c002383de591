package launch

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksLauncher(t *testing.T) {
	assert.IsType(t, LogLauncher{}, New("", nil))
	assert.IsType(t, LogLauncher{}, New("   ", []string{"x"}))
	assert.IsType(t, ExecLauncher{}, New("/bin/true", nil))
}

func TestLogLauncher(t *testing.T) {
	err := LogLauncher{}.Launch(context.Background(), Request{Title: "Demo"})
	assert.NoError(t, err)
}

func TestExecLauncherExpandsPlaceholders(t *testing.T) {
	l := ExecLauncher{Command: "viewer", Args: []string{"--title={title}", "{entrypoint}", "{basedir}", "{source}", "plain"}}
	got := l.expand(Request{Title: "Demo", EntryPoint: "/c/b/index.html", BaseDir: "/c/b", SourceURI: "https://host/"})
	assert.Equal(t, []string{"--title=Demo", "/c/b/index.html", "/c/b", "https://host/", "plain"}, got)
}

func TestExecLauncherRunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	l := ExecLauncher{Command: sh, Args: []string{"-c", `printf '%s' "$1" > launched.txt`, "sh", "{title}"}}

	require.NoError(t, l.Launch(context.Background(), Request{Title: "Demo", BaseDir: dir}))
	got, err := os.ReadFile(filepath.Join(dir, "launched.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Demo", string(got))

	failing := ExecLauncher{Command: sh, Args: []string{"-c", "exit 3"}}
	assert.Error(t, failing.Launch(context.Background(), Request{BaseDir: dir}))
}

func TestExecLauncherWithoutCommand(t *testing.T) {
	assert.ErrorIs(t, ExecLauncher{}.Launch(context.Background(), Request{}), ErrNoCommand)
}
