package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ortelius/guac-vex/internal/collector"
	"github.com/ortelius/guac-vex/model"
	"github.com/ortelius/guac-vex/restapi/modules/certifyvuln"
	"github.com/spf13/cobra"
)

func (a *app) newIngestPackageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest-package PURL...",
		Short: "Ingest packages into GUAC",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			for _, purl := range args {
				id, err := client.IngestPackage(cmd.Context(), purl)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, purl)
			}
			return nil
		},
	}
}

// metadataFlags are the scan provenance flags shared by the ingest commands
type metadataFlags struct {
	dbURI          string
	dbVersion      string
	scannerURI     string
	scannerVersion string
	collector      string
	origin         string
	timeScanned    string
}

func (m *metadataFlags) register(cmd *cobra.Command, collectorDefault, originDefault string) {
	cmd.Flags().StringVar(&m.dbURI, "db-uri", "", "vulnerability database URI")
	cmd.Flags().StringVar(&m.dbVersion, "db-version", "", "vulnerability database version")
	cmd.Flags().StringVar(&m.scannerURI, "scanner-uri", "", "scanner URI")
	cmd.Flags().StringVar(&m.scannerVersion, "scanner-version", "", "scanner version")
	cmd.Flags().StringVar(&m.collector, "collector", collectorDefault, "collector name")
	cmd.Flags().StringVar(&m.origin, "origin", originDefault, "origin of the finding")
	cmd.Flags().StringVar(&m.timeScanned, "time-scanned", "", "scan time, RFC3339 (default now)")
}

func (m *metadataFlags) metadata() (model.VulnerabilityMetadata, error) {
	scanned := time.Now().UTC()
	if m.timeScanned != "" {
		t, err := time.Parse(time.RFC3339, m.timeScanned)
		if err != nil {
			return model.VulnerabilityMetadata{}, fmt.Errorf("--time-scanned: %w", err)
		}
		scanned = t
	}
	return model.VulnerabilityMetadata{
		DBURI:          m.dbURI,
		DBVersion:      m.dbVersion,
		ScannerURI:     m.scannerURI,
		ScannerVersion: m.scannerVersion,
		TimeScanned:    scanned,
		Collector:      m.collector,
		Origin:         m.origin,
	}, nil
}

func (a *app) newIngestVulnCmd() *cobra.Command {
	var vulnReq certifyvuln.VulnerabilityRequest
	var meta metadataFlags

	cmd := &cobra.Command{
		Use:   "ingest-vuln PURL",
		Short: "Ingest a vulnerability certification for an already ingested package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vuln, err := vulnReq.ToModel()
			if err != nil {
				return err
			}
			md, err := meta.metadata()
			if err != nil {
				return err
			}

			client, _, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			id, err := client.IngestCertifyVuln(cmd.Context(), args[0], vuln, md)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&vulnReq.Type, "type", "none", "vulnerability type: osv, cve, ghsa or none")
	cmd.Flags().StringVar(&vulnReq.ID, "id", "", "vulnerability ID")
	cmd.Flags().IntVar(&vulnReq.Year, "year", 0, "CVE year")
	meta.register(cmd, "guac-vex", "")
	return cmd
}

func (a *app) newIngestOSVCmd() *cobra.Command {
	var file string
	var meta metadataFlags

	cmd := &cobra.Command{
		Use:   "ingest-osv PURL...",
		Short: "Certify packages against an OSV record",
		Long: `Reads one OSV record and, for each package URL, ingests the package and
a certification: the OSV ID when the package version is in an affected range,
no vulnerability otherwise.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			record, err := collector.ReadOSV(f)
			if err != nil {
				return err
			}
			md, err := meta.metadata()
			if err != nil {
				return err
			}

			client, _, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			results, err := collector.CollectOSV(cmd.Context(), client, record, args, md)
			for _, r := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\taffected=%v\t%s\n", r.RecordID, r.Affected, r.Purl)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "OSV record (JSON)")
	_ = cmd.MarkFlagRequired("file")
	meta.register(cmd, "collectorist-osv", "OSV")
	return cmd
}
