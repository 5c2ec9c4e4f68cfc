package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/momentnav/internal/config"
	"github.com/mgpai22/momentnav/internal/logging"
)

var (
	verbose    bool
	configPath string
	roots      []string
	editorName string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "momentnav",
	Short: "Find spoken lines in transcripts and jump to the moment",
	Long: `momentnav searches a library of timed-text transcripts, links each
transcript to its media file and opens the media at the matching moment.

Matches can also be pushed to a video editor's timeline as padded clips,
and the editor's own timeline text can be searched.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Resolve(configPath)
		if err != nil {
			return err
		}
		if len(roots) > 0 {
			loaded.Library.Roots = roots
		}
		if editorName != "" {
			loaded.Editor.Name = editorName
		}
		cfg = loaded
		logger = logging.NewLogger(verbose || cfg.Verbose)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file (default: user config dir/momentnav/config.yaml)")
	rootCmd.PersistentFlags().
		StringSliceVarP(&roots, "root", "r", nil, "Library root directory (repeatable; overrides library.roots)")
	rootCmd.PersistentFlags().
		StringVar(&editorName, "editor", "", "Editor integration to use (bridge, ffmpeg)")
}
