package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/render"
	"github.com/KaramelBytes/csvlens/internal/server"
	"github.com/KaramelBytes/csvlens/internal/session"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := current()
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		load := dataset.DefaultOptions()
		load.MaxRows = c.MaxRows
		load.Delimiter = c.DelimiterRune()

		logger := newLogger(c)
		store := session.NewStore(time.Duration(c.SessionTTLMinutes) * time.Minute)
		srv := server.New(store, server.Options{
			MaxUploadBytes: int64(c.MaxUploadMB) << 20,
			PreviewRows:    c.PreviewRows,
			Load:           load,
			Render:         render.Options{Width: c.ChartWidth, Height: c.ChartHeight, Bins: c.HistogramBins},
			Logger:         logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard listening on %s\n", addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
}
