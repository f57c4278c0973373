// Package main provides the entry point for the kotoba CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/kotobacli/kotoba/internal/ai"
	"github.com/kotobacli/kotoba/internal/audio"
	"github.com/kotobacli/kotoba/internal/blobstore"
	"github.com/kotobacli/kotoba/internal/cache"
	"github.com/kotobacli/kotoba/internal/dict"
	"github.com/kotobacli/kotoba/internal/metastore"
	"github.com/kotobacli/kotoba/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	style      string
	width      uint
	mouse      bool
	voice      string

	rootCmd = &cobra.Command{
		Use:   "kotoba",
		Short: "Look up Japanese words with native audio, in the terminal",
		Long: paragraph(
			fmt.Sprintf("\nLook up Japanese words and phrases %s. Entries and native pronunciation are cached locally for offline replay.", keyword("with native audio")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI()
		},
	}
)

func keyword(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("211")).Render(s)
}

func paragraph(s string) string {
	return lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render(s)
}

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != styles.AutoStyle && styles.DefaultStyles[style] == nil {
		if _, err := os.Stat(style); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("specified style does not exist: %s", style)
		} else if err != nil {
			return fmt.Errorf("unable to stat file: %w", err)
		}
	}
	return nil
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	voice = viper.GetString("voice")

	if voice != string(dict.VoiceFemale) && voice != string(dict.VoiceMale) {
		return fmt.Errorf("voice must be %q or %q, got %q", dict.VoiceFemale, dict.VoiceMale, voice)
	}
	if rate := viper.GetFloat64("slow_rate"); rate <= 0 || rate >= 1 {
		return fmt.Errorf("slow_rate must be between 0 and 1, got %.2f", rate)
	}
	if delay := viper.GetInt("loop_delay_ms"); delay < 0 {
		return fmt.Errorf("loop_delay_ms must not be negative, got %d", delay)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") {
		if term.IsTerminal(int(os.Stdout.Fd())) && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}
			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// resolveDataDir returns the directory holding the metadata snapshot and the
// audio payload store.
func resolveDataDir() (string, error) {
	if d := viper.GetString("data_dir"); d != "" {
		return d, nil
	}
	scope := gap.NewScope(gap.User, "kotoba")
	dirs, err := scope.DataDirs()
	if err != nil || len(dirs) == 0 {
		return "", fmt.Errorf("unable to resolve data directory: %w", err)
	}
	return dirs[0], nil
}

func runTUI() error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the configured one if unset or invalid
	if cfg.GlamourStyle == "" || validateStyle(cfg.GlamourStyle) != nil {
		cfg.GlamourStyle = style
	}
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Voice = voice
	cfg.LoopDelayMillis = viper.GetInt("loop_delay_ms")
	cfg.SlowRate = viper.GetFloat64("slow_rate")

	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	logger := log.Default()
	logger.Debug("data directory", "path", dataDir)

	blobs, err := blobstore.Open(filepath.Join(dataDir, "audio"))
	if err != nil {
		return fmt.Errorf("unable to open audio store: %w", err)
	}
	defer blobs.Close() //nolint:errcheck
	meta := metastore.New(filepath.Join(dataDir, "entries.json"))

	ctx := context.Background()
	analyzer, err := ai.NewAnalyzer(ctx, os.Getenv("GEMINI_API_KEY"), viper.GetString("gemini.model"), logger)
	if err != nil {
		return fmt.Errorf("unable to create analyzer: %w", err)
	}
	defer analyzer.Close() //nolint:errcheck

	synth, err := ai.NewSynthesizer(ctx, logger)
	if err != nil {
		return fmt.Errorf("unable to create synthesizer: %w", err)
	}
	defer synth.Close() //nolint:errcheck

	audioCtx, err := audio.NewContext()
	if err != nil {
		return fmt.Errorf("unable to open audio device: %w", err)
	}

	c := cache.New(cache.Options{
		Analyzer:    analyzer,
		Synthesizer: synth,
		Blobs:       blobs,
		Meta:        meta,
		Audio:       audioCtx,
		Voice:       dict.Voice(voice),
		Logger:      logger,
	})
	c.Rehydrate()
	defer c.Shutdown()

	// Run Bubble Tea program
	if _, err := ui.NewProgram(cfg, c).Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}
	return nil
}

// setupLog redirects logging to the file named by KOTOBA_LOG; without it all
// logging is discarded so the TUI stays clean.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)
	if lf := os.Getenv("KOTOBA_LOG"); lf != "" {
		f, err := os.OpenFile(lf, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("error setting up logging: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
		return f.Close, nil
	}
	return func() error { return nil }, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to auto-detect)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")
	rootCmd.Flags().StringVar(&voice, "voice", "", "native audio voice (female/male)")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("mouse", false)
	viper.SetDefault("voice", string(dict.VoiceFemale))
	viper.SetDefault("loop_delay_ms", 750)
	viper.SetDefault("slow_rate", 0.7)
	viper.SetDefault("data_dir", "")
	viper.SetDefault("gemini.model", ai.DefaultModel)

	rootCmd.AddCommand(configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "kotoba")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "kotoba")}, dirs...)
	}

	if c := os.Getenv("KOTOBA_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("kotoba")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("kotoba")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "kotoba.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
