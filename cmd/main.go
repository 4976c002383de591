package main

import (
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"flint/internal/config"
	"flint/internal/launch"
	"flint/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("flint failed")
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "flint",
		Short: "Fetch flint app manifests, cache their files and launch them",
		Long: `flint downloads the files listed in an app manifest (flint.json) into a
per-source cache directory and hands the app over to a launcher.

Examples:
  flint load https://example.org/apps/demo/     # load once and print the result
  flint serve --config config.yml               # run the launch API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(opts), newLoadCmd(opts))
	return root
}

// setup loads the config and configures logging. The returned closer flushes
// the log file, if any.
func (o *rootOptions) setup() (config.Config, io.Closer, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	closer, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return cfg, nil, err
	}
	return cfg, closer, nil
}

func newLauncher(cfg config.Config) launch.Launcher { //nolint:ireturn
	return launch.New(cfg.LaunchCommand, cfg.LaunchArgs)
}
