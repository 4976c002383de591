package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"flint/internal/launch"
	"flint/internal/loader"
)

type loadOptions struct {
	cacheDir string
	launch   bool
}

func newLoadCmd(root *rootOptions) *cobra.Command {
	opts := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load <source-uri>",
		Short: "Load one app into the cache and print its title, entry point and base directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, closer, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			if opts.cacheDir == "" {
				opts.cacheDir = cfg.CacheDir
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := loader.New(opts.cacheDir, args[0], loader.Options{
				HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
			})
			if !s.Load(ctx) {
				return fmt.Errorf("load %s: %w", args[0], s.Err())
			}

			req := launch.Request{
				Title:      s.Title(),
				EntryPoint: s.EntryPointPath(),
				BaseDir:    s.BaseDir(),
				SourceURI:  s.SourceURI(),
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "title:      %s\n", req.Title)
			fmt.Fprintf(out, "entrypoint: %s\n", req.EntryPoint)
			fmt.Fprintf(out, "base_dir:   %s\n", req.BaseDir)

			if !opts.launch {
				return nil
			}
			return launchApp(ctx, newLauncher(cfg), req)
		},
	}
	cmd.Flags().StringVar(&opts.cacheDir, "cache-dir", "", "cache root directory (default: cache_dir from config)")
	cmd.Flags().BoolVar(&opts.launch, "launch", false, "hand the loaded app to the configured launcher")
	return cmd
}

func launchApp(ctx context.Context, l launch.Launcher, req launch.Request) error {
	if err := l.Launch(ctx, req); err != nil {
		return fmt.Errorf("launch %s: %w", req.Title, err)
	}
	return nil
}
