package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/momentnav/internal/search"
	"github.com/mgpai22/momentnav/internal/subtitle"
)

var searchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search every transcript in the library",
	Long: `Search the library's transcripts for a keyword (case-insensitive substring).

Results are grouped per transcript file in document order. Use --play to
open the media of one result at its start time.

Examples:
  momentnav search "winter is coming" -r ~/shows
  momentnav search hello --show "Alpha" --play 2
  momentnav search hello --export hello.srt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().
		StringP("show", "s", "", "Limit the search to one show directory")
	searchCmd.Flags().
		IntP("play", "p", 0, "Play the Nth result (1-based)")
	searchCmd.Flags().
		StringP("export", "e", "", "Write the matching entries to an SRT file")
}

func runSearch(cmd *cobra.Command, args []string) error {
	keyword := strings.Join(args, " ")
	show, _ := cmd.Flags().GetString("show")
	playN, _ := cmd.Flags().GetInt("play")
	exportPath, _ := cmd.Flags().GetString("export")

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.nav.Search(ctx, keyword, show)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Printf("No matches for %q\n", keyword)
		return nil
	}

	printResults(results)
	fmt.Printf("\n%d matches in %d files\n", len(results), len(search.Group(results)))

	if exportPath != "" {
		if err := subtitle.Write(exportDocument(results), exportPath); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("Matches exported: %s\n", exportPath)
	}

	if playN != 0 {
		if playN < 1 || playN > len(results) {
			return fmt.Errorf("--play %d out of range (1-%d)", playN, len(results))
		}
		r := results[playN-1]
		if err := a.nav.Play(ctx, r.SourcePath, r.Start); err != nil {
			return err
		}
		fmt.Printf("Playing at %s\n", r.Start.Clock())
	}
	return nil
}

func printResults(results []search.Result) {
	n := 0
	for _, group := range search.Group(results) {
		fmt.Printf("File: %s\n", group.Name)
		for _, r := range group.Results {
			n++
			fmt.Printf("  %3d. [%s --> %s] %s\n", n, r.Start, r.End, strings.ReplaceAll(r.Text, "\n", " / "))
		}
	}
}

// matches renumbered as one SRT document
func exportDocument(results []search.Result) subtitle.Document {
	doc := subtitle.Document{Entries: make([]subtitle.Entry, 0, len(results))}
	for i, r := range results {
		doc.Entries = append(doc.Entries, subtitle.Entry{
			Index:     i + 1,
			Start:     r.Start,
			End:       r.End,
			RawText:   r.Text,
			CleanText: r.Text,
		})
	}
	return doc
}
