package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the match, batch, quick score and cache endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	cfg := rt.cfg.Server
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	srv := server.New(rt.matcher, cfg, rt.logger)
	return srv.Run(ctx)
}
