package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/meigma/apk"
	"github.com/meigma/apk/http"
	"github.com/meigma/apk/internal/config"
)

// cli carries flag values and the resolved configuration for one run.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger

	cfgFile        string
	input          string
	url            string
	logLevel       string
	logFormat      string
	verbose        bool
	maxFileSize    uint64
	maxArchiveSize uint64
	workers        int
	noProgress     bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "apkcat",
		Short: "Inspect Android application packages",
		Long: `apkcat opens an APK from a local file or an HTTP URL, lists its entries,
classifies dex payloads, and verifies every entry's CRC-32 against the value
declared in the archive.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default is apkcat.yaml in home or pwd)")
	flags.StringVarP(&c.input, "input", "i", "", "path to the APK file")
	flags.StringVar(&c.url, "url", "", "URL of the APK (server must support range requests)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.logFormat, "log-format", "", "log format (text, json)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "shorthand for --log-level=debug")
	flags.Uint64Var(&c.maxFileSize, "max-file-size", 0, "maximum decompressed size of one entry in bytes (0 = unlimited)")
	flags.Uint64Var(&c.maxArchiveSize, "max-archive-size", 0, "maximum APK size in bytes (0 = unlimited)")
	flags.IntVar(&c.workers, "workers", 0, "number of entries verified in parallel")
	flags.BoolVar(&c.noProgress, "no-progress", false, "disable progress bar")
	root.MarkFlagsMutuallyExclusive("input", "url")

	root.AddCommand(
		newListCmd(c),
		newInfoCmd(c),
		newChecksumsCmd(c),
		newReportCmd(c),
		newCatCmd(c),
	)
	return root
}

// setup loads configuration, applies flag overrides, and installs the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fl := cmd.Flags()
	if fl.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if fl.Changed("log-format") {
		cfg.LogFormat = c.logFormat
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	if fl.Changed("max-file-size") {
		cfg.MaxFileSize = c.maxFileSize
	}
	if fl.Changed("max-archive-size") {
		cfg.MaxArchiveSize = c.maxArchiveSize
	}
	if fl.Changed("workers") {
		cfg.Workers = c.workers
	}
	if c.noProgress {
		cfg.Progress = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = newLogger(cmd.ErrOrStderr(), cfg)
	c.logger.Debug("configuration",
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"max_file_size", cfg.MaxFileSize,
		"max_archive_size", cfg.MaxArchiveSize,
		"workers", cfg.Workers,
		"progress", cfg.Progress)
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(w, &tint.Options{Level: level})
	}
	return slog.New(handler)
}

// open opens the APK named by --input or --url.
func (c *cli) open(extra ...apk.Option) (*apk.Archive, error) {
	opts := append([]apk.Option{
		apk.WithLogger(c.logger),
		apk.WithMaxFileSize(c.cfg.MaxFileSize),
		apk.WithMaxArchiveSize(c.cfg.MaxArchiveSize),
		apk.WithMaxDecoderMemory(c.cfg.MaxDecoderMemory),
		apk.WithVerifyConcurrency(c.cfg.Workers),
	}, extra...)

	switch {
	case c.input != "":
		c.logger.Debug("opening file", "path", c.input)
		return apk.OpenFile(c.input, opts...)
	case c.url != "":
		c.logger.Debug("opening url", "url", c.url)
		src, err := http.NewSource(c.url)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", c.url, err)
		}
		return apk.OpenSource(src, append([]apk.Option{apk.WithName(c.url)}, opts...)...)
	default:
		return nil, errors.New("no APK given: use --input or --url")
	}
}
