package main

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/slidemarks/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "slidemarks",
		Short: "Find slide markers in a PDF and write an annotation bundle",
		Long: `Slidemarks locates small magenta markers printed on the pages of a PDF,
numbers them in reading order (SLIDE-001, SLIDE-002, ...) and writes a
.pdfannotations bundle holding the document and the marker positions.

The markers can optionally be removed from the embedded document, either by
redacting the content underneath them or by repainting the page as an image.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			setupLogging(opts.verbose)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newServeCmd(opts))

	return cmd
}

// setupLogging sends human-readable logs to stderr. stdout is reserved for
// command output and the MCP protocol.
func setupLogging(verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level := zerolog.InfoLevel
	if verbose || strings.EqualFold(os.Getenv(config.EnvLogLevel), "debug") {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

// loadConfig resolves defaults, the optional config file and the environment.
// Command flags are applied by the caller.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		log.Debug().Str("path", o.configPath).Msg("loaded config file")
	}
	if err := config.ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
