package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showsCmd = &cobra.Command{
	Use:   "shows",
	Short: "List the show directories of the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		shows, err := a.nav.Shows()
		if err != nil {
			return err
		}
		for _, show := range shows {
			fmt.Println(show)
		}
		return nil
	},
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Show which media file each transcript is linked to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		unmatchedOnly, _ := cmd.Flags().GetBool("unmatched")

		a, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.Close()

		links := a.nav.Links()
		if !unmatchedOnly {
			for _, t := range links.Transcripts() {
				if m, ok := links.Media(t); ok {
					fmt.Printf("%s\n  -> %s\n", t, m)
				}
			}
		}

		unmatched := links.Unmatched()
		for _, t := range unmatched {
			fmt.Printf("%s\n  -> (no media)\n", t)
		}
		fmt.Printf("\n%d linked, %d unmatched\n", links.Len(), len(unmatched))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showsCmd)
	rootCmd.AddCommand(linksCmd)

	linksCmd.Flags().Bool("unmatched", false, "Only list transcripts without media")
}
