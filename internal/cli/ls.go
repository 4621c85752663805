package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guiyumin/narrify/internal/core/i18n"
	"github.com/guiyumin/narrify/internal/core/store"
)

var (
	lsJSON  bool
	lsLimit int
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored summaries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runLs,
}

func init() {
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "output as JSON")
	lsCmd.Flags().IntVarP(&lsLimit, "limit", "n", 0, "show at most n records")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	entries, err := st.List(ctx)
	if err != nil {
		return err
	}
	if lsLimit > 0 && len(entries) > lsLimit {
		entries = entries[:lsLimit]
	}

	if lsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println(i18n.T(cfg.Language).CLI.NoRecords)
		return nil
	}
	printEntries(os.Stdout, entries)
	return nil
}

func printEntries(w io.Writer, entries []store.Entry) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	faint := color.New(color.Faint)

	for _, e := range entries {
		bold.Fprintf(w, "%s", e.Identifier)
		cyan.Fprintf(w, "  %s", e.Source)
		faint.Fprintf(w, "  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "  %s\n", firstLine(e.Summary, 100))
		faint.Fprintf(w, "  %s\n\n", e.Name)
	}
}

// firstLine returns the first non-empty, non-heading line of s, cut to max runes.
func firstLine(s string, max int) string {
	line := ""
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l != "" && !strings.HasPrefix(l, "#") {
			line = l
			break
		}
	}
	r := []rune(line)
	if len(r) > max {
		return string(r[:max-1]) + "…"
	}
	return line
}
