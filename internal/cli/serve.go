package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/momentnav/internal/server"
	"github.com/mgpai22/momentnav/internal/timeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and live timeline events",
	Long: `Start the HTTP API: library search, playback, clip pushes and the editor
timeline cache. Timeline status and deferred results stream on /api/events
as server-sent events.

Examples:
  momentnav serve -r ~/shows --watch
  momentnav serve --addr 127.0.0.1:9000 --editor ffmpeg`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("addr", "", "Listen address (default: http.address)")
	serveCmd.Flags().
		Bool("watch", false, "Rebuild transcript links when the library changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.HTTP.Address
	}
	watch, _ := cmd.Flags().GetBool("watch")

	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	broker := server.NewBroker()
	coord := timeline.New(a.editor,
		timeline.WithLogger(logger),
		timeline.WithFetchTimeout(cfg.Editor.FetchTimeout),
		timeline.WithNotify(broker.PublishTimeline),
	)
	defer coord.Close()

	srv := server.New(server.Config{
		Address: addr,
		Watch:   watch || cfg.Library.Watch,
		Roots:   cfg.Library.Roots,
	}, a.nav, coord, broker, logger)

	return srv.Run(ctx)
}
