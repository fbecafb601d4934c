package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/appscout/internal/export"
	"github.com/sells-group/appscout/internal/search"
)

var (
	searchWorkers int
	searchFormat  string
	searchOutput  string
	searchQuiet   bool
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword...>",
	Short: "Search the store and extract every app whose title matches the keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		keyword := strings.Join(args, " ")

		format, err := export.ParseFormat(searchFormat)
		if err != nil {
			return err
		}
		if format == export.FormatXLSX && searchOutput == "" {
			return eris.Wrap(export.ErrNeedsFile, "search: xlsx needs --output")
		}

		svc := newSearchService(cfg)

		var s *spinner.Spinner
		if !searchQuiet {
			s = spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			s.Suffix = fmt.Sprintf(" searching %q", keyword)
			s.Start()
		}
		report, err := svc.Search(ctx, search.Request{Keyword: keyword, Workers: searchWorkers})
		if s != nil {
			s.Stop()
		}
		if err != nil {
			return err
		}

		if err := writeItems(cmd.OutOrStdout(), searchOutput, format, report); err != nil {
			return err
		}
		printSummary(cmd.ErrOrStderr(), report)
		return nil
	},
}

// writeItems sends the report's items to path, or to stdout when path is empty.
func writeItems(stdout io.Writer, path string, format export.Format, report *search.Report) error {
	if path == "" {
		return export.Write(stdout, format, report.Items)
	}
	return export.WriteFile(path, format, report.Items)
}

func printSummary(w io.Writer, report *search.Report) {
	st := report.Stats
	fmt.Fprintf(w, "listing:    %s\n", report.Timings.Listing.Round(time.Millisecond))
	fmt.Fprintf(w, "extraction: %s (%d workers)\n", report.Timings.Extraction.Round(time.Millisecond), report.Workers)
	fmt.Fprintf(w, "found:      %d\n", st.Blocks)
	fmt.Fprintf(w, "relevant:   %d\n", st.Records)
	if skipped := st.StructuralSkips + st.FilterSkips + st.FetchSkips; skipped > 0 {
		fmt.Fprintf(w, "skipped:    %d (filtered %d, malformed %d, unreachable %d)\n",
			skipped, st.FilterSkips, st.StructuralSkips, st.FetchSkips)
	}
}

func init() {
	searchCmd.Flags().IntVarP(&searchWorkers, "workers", "w", 0, "extraction workers (default from config)")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "json", "output format: json, jsonl, yaml, xlsx")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "output file (default stdout)")
	searchCmd.Flags().BoolVar(&searchQuiet, "quiet", false, "disable the progress spinner")
	rootCmd.AddCommand(searchCmd)
}
