package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/guiyumin/narrify/internal/core/version"
)

var (
	configFile string
	pinFlag    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "narrify",
	Short: "Summarize videos from their captions, or from their audio when there are none",
	Long: `narrify fetches a video's captions (or transcribes its audio when the
video has none), summarizes the transcript with an LLM, and keeps every
summary on disk or on a WebDAV server.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real environment variables win
		_ = godotenv.Load()
		setupLogging(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ~/.config/narrify/config.yml)")
	rootCmd.PersistentFlags().StringVar(&pinFlag, "pin", "", "4-digit PIN for encrypted API keys (default: $NARRIFY_PIN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func resolvePIN() string {
	if pinFlag != "" {
		return pinFlag
	}
	return os.Getenv("NARRIFY_PIN")
}
