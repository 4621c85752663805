package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/guiyumin/narrify/internal/core/config"
	"github.com/guiyumin/narrify/internal/core/crypto"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage narrify configuration",
	Long:  "View narrify settings and store API keys",
}

// narrify config show - show current config
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printConfig(os.Stdout, cfg, configPath())
		return nil
	},
}

// narrify config path - show config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(configPath())
	},
}

// narrify config set-key SERVICE - store an API key
var configSetKeyCmd = &cobra.Command{
	Use:       "set-key <transcription|summarization>",
	Short:     "Store an API key, optionally encrypted with a 4-digit PIN",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"transcription", "summarization"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var svc *config.AIServiceConfig
		switch args[0] {
		case "transcription":
			svc = &cfg.AI.Transcription
		case "summarization":
			svc = &cfg.AI.Summarization
		default:
			return fmt.Errorf("unknown service %q (want transcription or summarization)", args[0])
		}

		key, err := readSecret("API key: ")
		if err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("API key is required")
		}

		pin := pinFlag
		if pin == "" {
			pin, err = readSecret("PIN (4 digits, enter to store unencrypted): ")
			if err != nil {
				return err
			}
			pin = strings.TrimSpace(pin)
		}
		if pin != "" {
			if err := crypto.ValidatePIN(pin); err != nil {
				return err
			}
		}

		if err := svc.SetKey(key, pin); err != nil {
			return err
		}
		if err := config.SaveFile(configPath(), cfg); err != nil {
			return fmt.Errorf("failed to save: %w", err)
		}

		if pin == "" {
			fmt.Println(color.YellowString("Stored %s key unencrypted in %s", args[0], configPath()))
		} else {
			fmt.Printf("Stored encrypted %s key in %s\n", args[0], configPath())
			fmt.Println("Pass the PIN with --pin or NARRIFY_PIN when running narrify.")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.SavePath()
}

// readSecret reads without echo from a terminal, or a plain line from a pipe.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}

func maskKey(s config.AIServiceConfig) string {
	switch {
	case s.APIKey == "":
		return "(not set, using environment)"
	case s.IsEncrypted():
		return "(encrypted)"
	default:
		key := strings.TrimPrefix(s.APIKey, config.PlainKeyPrefix)
		if len(key) <= 8 {
			return "****"
		}
		return key[:4] + "…" + key[len(key)-4:]
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func printConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintf(w, "  Config:      %s\n", path)
	fmt.Fprintf(w, "  Language:    %s\n", cfg.Language)

	fmt.Fprintln(w, "\nServer:")
	fmt.Fprintf(w, "  port:            %d\n", cfg.Server.Port)
	fmt.Fprintf(w, "  api_key:         %t\n", cfg.Server.APIKey != "")
	fmt.Fprintf(w, "  allowed_origins: %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))

	fmt.Fprintln(w, "\nStorage:")
	switch {
	case cfg.Storage.WebDAV.URL != "":
		fmt.Fprintf(w, "  webdav: %s %s\n", cfg.Storage.WebDAV.URL, orDefault(cfg.Storage.WebDAV.Dir, "/transcripts"))
	case cfg.Storage.SQLitePath != "":
		fmt.Fprintf(w, "  sqlite: %s\n", cfg.Storage.SQLitePath)
	default:
		fmt.Fprintf(w, "  dir: %s\n", cfg.Storage.Dir)
	}

	fmt.Fprintln(w, "\nFetch:")
	fmt.Fprintf(w, "  ytdlp_path:           %s\n", cfg.Fetch.YtdlpPath)
	fmt.Fprintf(w, "  max_duration_seconds: %d\n", cfg.Fetch.MaxDurationSeconds)
	fmt.Fprintf(w, "  transcoder:           %s\n", cfg.Fetch.Transcoder)

	fmt.Fprintln(w, "\nAI:")
	fmt.Fprintf(w, "  provider:      %s\n", cfg.AI.Provider)
	fmt.Fprintf(w, "  transcription: %s %s\n", orDefault(cfg.AI.Transcription.Model, "default"), maskKey(cfg.AI.Transcription))
	fmt.Fprintf(w, "  summarization: %s %s\n", orDefault(cfg.AI.Summarization.Model, "default"), maskKey(cfg.AI.Summarization))
}
