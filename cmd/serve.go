package cmd

import (
	"github.com/ortelius/guac-vex/internal/api"
	"github.com/ortelius/guac-vex/internal/config"
	"github.com/spf13/cobra"
)

func (a *app) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the VEX and ingest REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			app := api.NewFiberApp(client, vexOptions(cfg)...)
			logger.Sugar().Infof("Listening on %s, GUAC at %s", cfg.Listen, cfg.Endpoint)
			return app.Listen(cfg.Listen)
		},
	}

	cmd.Flags().String("listen", ":8081", "address to listen on")
	cmd.Flags().Bool("resolve-all-ids", false, "use CVE and GHSA IDs instead of NOT_SET for non-OSV records")
	cmd.Flags().Bool("purl-products", false, "name products by package URL")

	a.bindOnRun(cmd, map[string]string{
		config.KeyListen:        "listen",
		config.KeyResolveAllIDs: "resolve-all-ids",
		config.KeyPurlProducts:  "purl-products",
	})
	return cmd
}
