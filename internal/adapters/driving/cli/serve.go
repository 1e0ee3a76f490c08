package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docgap/internal/adapters/driving/api"
)

// runServer serves the API until the command's context ends. Replaced in tests.
var runServer = func(cmd *cobra.Command, s *api.Server) error {
	return s.Run(cmd.Context())
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the analysis, gap detection, drafting, export and article
operations as a JSON HTTP API.

Routes:
  POST /api/analysis          POST /api/detect-gaps
  POST /api/compare           POST /api/suggest
  POST /api/generate-article  POST /api/translate
  POST /api/export            GET  /api/articles
  GET  /api/articles/:id      GET  /api/articles/search?q=
  GET  /healthz

The listen address and allowed CORS origins come from server.addr and
server.cors_origins unless overridden by flags.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address, for example 127.0.0.1:8080")
	serveCmd.Flags().StringSlice("cors", nil, "allowed CORS origins")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	settings := serverSettings
	if addr, _ := cmd.Flags().GetString("addr"); strings.TrimSpace(addr) != "" {
		settings.Addr = strings.TrimSpace(addr)
	}
	if origins, _ := cmd.Flags().GetStringSlice("cors"); len(origins) > 0 {
		settings.CORSOrigins = origins
	}

	server, err := api.NewServer(&api.Ports{
		Analysis: analysisService,
		Articles: articleService,
		Drafting: draftingService,
		Export:   exportService,
	}, settings)
	if err != nil {
		return err
	}

	cmd.Printf("docgap API listening on http://%s\n", server.Addr())
	return runServer(cmd, server)
}
