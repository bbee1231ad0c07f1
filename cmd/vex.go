package cmd

import (
	"fmt"

	"github.com/ortelius/guac-vex/internal/config"
	"github.com/ortelius/guac-vex/internal/vex"
	"github.com/spf13/cobra"
)

func (a *app) newVexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vex",
		Short: "Print an OpenVEX document built from every CertifyVuln record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			results, err := client.FetchAllCertifyVuln(cmd.Context())
			if err != nil {
				return err
			}

			doc, report := vex.Assemble(results, vexOptions(cfg)...)
			if report.Skipped > 0 {
				logger.Sugar().Warnf("Skipped %d of %d records: %v", report.Skipped, len(results), report.Err)
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d of %d records\n", report.Skipped, len(results))
			}

			return vex.Encode(cmd.OutOrStdout(), doc, cfg.Output)
		},
	}

	cmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
	cmd.Flags().Bool("resolve-all-ids", false, "use CVE and GHSA IDs instead of NOT_SET for non-OSV records")
	cmd.Flags().Bool("purl-products", false, "name products by package URL")

	a.bindOnRun(cmd, map[string]string{
		config.KeyOutput:        "output",
		config.KeyResolveAllIDs: "resolve-all-ids",
		config.KeyPurlProducts:  "purl-products",
	})
	return cmd
}
