package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/studylog/internal/config"
	"github.com/Tiliavir/studylog/internal/observability"
	"github.com/Tiliavir/studylog/internal/storage"
	"github.com/Tiliavir/studylog/internal/timecalc"
)

var (
	configPath  string
	dataDirFlag string

	// Resolved in PersistentPreRunE.
	cfg  config.Config
	base string

	clock timecalc.Clock = timecalc.SystemClock{}
)

var rootCmd = &cobra.Command{
	Use:   "studylog",
	Short: "studylog – a file-based study diary",
	Long: `studylog records study sessions as diary posts, shows them as a
date timeline with weekly statistics, and tracks survey completion.
All data is stored as human-readable JSON and YAML files in ~/.studylog/.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// exitError carries the process exit code for a failed command:
// 1 for user errors, 2 for storage and I/O errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error    { return &exitError{code: 1, err: err} }
func storageError(err error) error { return &exitError{code: 2, err: err} }

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.studylog/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (overrides config)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(weeklyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(surveyCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads the config, configures logging and resolves the data directory.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return userError(err)
	}
	cfg = loaded
	observability.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	switch {
	case dataDirFlag != "":
		base = dataDirFlag
	case cfg.DataDir != "":
		base = cfg.DataDir
	default:
		base, err = storage.DefaultBaseDir()
		if err != nil {
			return storageError(err)
		}
	}
	observability.Logger().Debug("config loaded", "data_dir", base, "timezone", cfg.Location().String())
	return nil
}

// now returns the current instant in the configured timezone.
func now() time.Time {
	return clock.Now().In(cfg.Location())
}
