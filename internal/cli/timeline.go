package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/momentnav/internal/editor"
	"github.com/mgpai22/momentnav/internal/timeline"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Work with the editor's active timeline",
}

var timelineSearchCmd = &cobra.Command{
	Use:   "search [keyword]",
	Short: "Search the text items on the editor's active timeline",
	Long: `Read every text item of the active timeline through the configured editor
and list the ones containing the keyword.

Examples:
  momentnav timeline search hello --editor bridge
  momentnav timeline search Hello --case`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTimelineSearch,
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	timelineCmd.AddCommand(timelineSearchCmd)

	timelineSearchCmd.Flags().Bool("case", false, "Match case exactly")
}

func runTimelineSearch(cmd *cobra.Command, args []string) error {
	keyword := strings.Join(args, " ")
	caseSensitive, _ := cmd.Flags().GetBool("case")

	worker, err := newEditor()
	if err != nil {
		return err
	}
	defer worker.Close()

	events := make(chan timeline.Event, 16)
	coord := timeline.New(worker,
		timeline.WithLogger(logger),
		timeline.WithFetchTimeout(cfg.Editor.FetchTimeout),
		timeline.WithNotify(func(ev timeline.Event) {
			select {
			case events <- ev:
			default:
			}
		}),
	)
	defer coord.Close()

	start := time.Now()
	out := coord.Search(keyword, caseSensitive)
	if !out.Deferred {
		printTimelineMatches(out.TimelineID, out.Matches)
		return nil
	}

	logger.Infow("Reading timeline", "editor", cfg.Editor.Name)
	for {
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case ev := <-events:
			switch {
			case ev.Kind == timeline.EventResults && ev.Keyword == keyword:
				logger.Debugw("Timeline read", "status", ev.Status, "duration", time.Since(start))
				printTimelineMatches(ev.TimelineID, ev.Matches)
				return nil
			case strings.HasPrefix(ev.Status, "failed:"):
				return fmt.Errorf("timeline search failed: %s", strings.TrimPrefix(ev.Status, "failed:"))
			}
		}
	}
}

func printTimelineMatches(timelineID string, matches []editor.Entry) {
	fmt.Printf("Timeline: %s\n", timelineID)
	for _, m := range matches {
		fmt.Printf("  [%d-%d] %s\n", m.StartFrame, m.EndFrame, m.Text)
	}
	fmt.Printf("\n%d matches\n", len(matches))
}
