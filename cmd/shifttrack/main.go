package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"shifttrack/internal/shared/config"
	"shifttrack/internal/shared/logger"
)

var (
	// задаются через -ldflags при сборке
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shifttrack",
	Short: "Shift tracking service for care workers",
	Long: `shifttrack records clock-in and clock-out of care workers inside a
geofenced work perimeter and gives managers live shift state,
weekly analytics and PDF timesheets.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"shifttrack version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to YAML config (default: $CONFIG_FILE or ./config/shifttrack.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// loadConfig: --config важнее CONFIG_FILE
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Load()
	}
	_ = godotenv.Load()
	return config.LoadFile(configPath)
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	return logger.NewLoggerWithOptions("shifttrack", logger.Options{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Dir:    cfg.Log.Dir,
	})
}
