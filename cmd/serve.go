package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/server"
)

var (
	serveAddr string
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve --dir <payload-dir> [--addr host:port]",
	Short: "Run the reference negotiation server over pre-rendered payloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry()
		if err != nil {
			return err
		}

		addr := serveAddr
		dir := serveDir
		if cfg != nil {
			if addr == "" {
				addr = cfg.ServeAddr
			}
			if dir == "" {
				dir = cfg.PayloadDir
			}
		}
		if dir == "" {
			return fmt.Errorf("payload directory required (--dir or payload_dir in config)")
		}
		if addr == "" {
			addr = "127.0.0.1:8547"
		}

		log := newLogger()
		store, err := server.LoadDir(dir, reg, log)
		if err != nil {
			return err
		}
		if store.Len() == 0 {
			return fmt.Errorf("no publishable payloads in %s", dir)
		}
		log.Info().
			Str("addr", addr).
			Int("payloads", store.Len()).
			Int("contentItems", len(store.Hashes())).
			Msg("serving")

		srv := server.New(store, reg, log)
		return http.ListenAndServe(addr, srv.Handler())
	},
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	} else if cfg != nil {
		if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDir, "dir", "", "directory of pre-rendered payload JSON files")
}
