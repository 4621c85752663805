package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guiyumin/narrify/internal/core/ai"
	"github.com/guiyumin/narrify/internal/core/ai/output"
	"github.com/guiyumin/narrify/internal/core/i18n"
)

var (
	summarizeOutput string
	summarizeJSON   bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <video_id>",
	Short: "Summarize one video and store the result",
	Long: `Summarize one video and store the result.

Captions are used when the video has them. Otherwise the audio is downloaded
with yt-dlp and transcribed, as long as the video is within the configured
duration limit.

Examples:
  narrify summarize dQw4w9WgXcQ
  narrify summarize https://www.youtube.com/watch?v=dQw4w9WgXcQ
  narrify summarize dQw4w9WgXcQ -o summary.md`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVarP(&summarizeOutput, "output", "o", "", "also write a markdown copy to this file")
	summarizeCmd.Flags().BoolVar(&summarizeJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(summarizeCmd)
}

// summarizeResult mirrors the HTTP response data.
type summarizeResult struct {
	VideoID string `json:"video_id"`
	Source  string `json:"source"`
	Summary string `json:"summary"`
	File    string `json:"file"`
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	t := i18n.T(cfg.Language)

	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)
	pipeline, err := newPipeline(cfg, st, slog.Default())
	if err != nil {
		return err
	}

	if !summarizeJSON {
		fmt.Fprintln(os.Stderr, color.CyanString(t.CLI.Summarizing, args[0]))
	}

	out, err := pipeline.Summarize(ctx, args[0])
	if err != nil {
		return err
	}

	if summarizeOutput != "" {
		if err := output.WriteMarkdown(summarizeOutput, output.Document{
			Identifier:   out.Identifier,
			Source:       out.Source,
			LanguageCode: out.LanguageCode,
			Summary:      out.Summary,
			Transcript:   out.Transcript,
			Timestamped:  out.Timestamped,
			StoragePath:  out.StoragePath,
		}); err != nil {
			return fmt.Errorf("failed to write %s: %w", summarizeOutput, err)
		}
	}

	if summarizeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summarizeResult{
			VideoID: out.Identifier,
			Source:  out.Source,
			Summary: out.Summary,
			File:    out.StoragePath,
		})
	}

	printOutcome(out)
	fmt.Fprintln(os.Stderr, color.GreenString(t.CLI.SavedTo, out.StoragePath))
	return nil
}

func printOutcome(out *ai.Outcome) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Printf("%s", out.Identifier)
	faint.Printf("  [%s]\n\n", out.Source)
	fmt.Println(out.Summary)
	fmt.Println()
}
