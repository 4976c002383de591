// Package launch hands a loaded app over to whatever runs it.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Request carries what a host needs to start a loaded app.
type Request struct {
	Title      string `json:"title"`
	EntryPoint string `json:"entrypoint"`
	BaseDir    string `json:"base_dir"`
	SourceURI  string `json:"source_uri"`
}

// Launcher starts a loaded app.
type Launcher interface {
	Launch(ctx context.Context, req Request) error
}

// LogLauncher only records the launch. It is the default when no native
// command is configured.
type LogLauncher struct{}

func (LogLauncher) Launch(_ context.Context, req Request) error {
	log.Info().
		Str("title", req.Title).
		Str("entrypoint", req.EntryPoint).
		Str("base_dir", req.BaseDir).
		Str("source_uri", req.SourceURI).
		Msg("app ready to launch")
	return nil
}

// ExecLauncher runs a native command for every launch. The placeholders
// {title}, {entrypoint}, {basedir} and {source} are expanded in Args.
type ExecLauncher struct {
	Command string
	Args    []string
}

var ErrNoCommand = errors.New("launch command not configured")

func (l ExecLauncher) Launch(ctx context.Context, req Request) error {
	if strings.TrimSpace(l.Command) == "" {
		return ErrNoCommand
	}
	args := l.expand(req)
	cmd := exec.CommandContext(ctx, l.Command, args...) //nolint:gosec // command comes from operator config
	cmd.Dir = req.BaseDir

	out, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn().Str("command", l.Command).Strs("args", args).Bytes("output", out).Err(err).Msg("launch command failed")
		return fmt.Errorf("run %s: %w", l.Command, err)
	}
	log.Info().Str("command", l.Command).Strs("args", args).Str("title", req.Title).Msg("app launched")
	return nil
}

func (l ExecLauncher) expand(req Request) []string {
	r := strings.NewReplacer(
		"{title}", req.Title,
		"{entrypoint}", req.EntryPoint,
		"{basedir}", req.BaseDir,
		"{source}", req.SourceURI,
	)
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = r.Replace(a)
	}
	return args
}

// New returns an ExecLauncher when command is set and a LogLauncher otherwise.
func New(command string, args []string) Launcher { //nolint:ireturn
	if strings.TrimSpace(command) == "" {
		return LogLauncher{}
	}
	return ExecLauncher{Command: command, Args: args}
}
