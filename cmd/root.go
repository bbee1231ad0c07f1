// Package cmd implements the guac-vex command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ortelius/guac-vex/internal/config"
	"github.com/ortelius/guac-vex/internal/guac"
	"github.com/ortelius/guac-vex/internal/vex"
	"github.com/ortelius/guac-vex/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logger = util.InitLogger()

// app carries state shared by the subcommands of one invocation
type app struct {
	v          *viper.Viper
	configFile string
}

// NewRootCmd builds the command tree with its own viper instance
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "guac-vex",
		Short: "Bridge GUAC vulnerability certifications and OpenVEX",
		Long: `Ingest packages and vulnerability certifications into a GUAC
GraphQL endpoint and turn the stored certifications into an OpenVEX document.

The endpoint has no default and must be given with --endpoint,
GUAC_VEX_ENDPOINT or the config file.`,
		Example: `  # Print a VEX document for everything GUAC knows
  guac-vex vex --endpoint http://localhost:8080/query

  # Record that log4j-core 2.13.0 is affected by an OSV advisory
  guac-vex ingest-package pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0
  guac-vex ingest-vuln pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0 --type osv --id GHSA-jfh8-c2jp-5v3q`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "YAML config file")
	flags.String("endpoint", "", "GUAC GraphQL endpoint URL")
	flags.Duration("timeout", 0, "per-request timeout (default 30s)")
	flags.Duration("wait", 0, "wait up to this long for GUAC to answer before starting")

	a.bind(rootCmd, config.KeyEndpoint, "endpoint")
	a.bind(rootCmd, config.KeyTimeout, "timeout")
	a.bind(rootCmd, config.KeyWait, "wait")

	rootCmd.AddCommand(
		a.newVexCmd(),
		a.newIngestPackageCmd(),
		a.newIngestVulnCmd(),
		a.newIngestOSVCmd(),
		a.newServeCmd(),
	)
	return rootCmd
}

// Execute runs the CLI and exits non-zero on error
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// bind ties a viper key to a flag, persistent or local, of cmd
func (a *app) bind(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	if err := a.v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", flag, err))
	}
}

// bindOnRun binds local flags when cmd actually runs. Several subcommands
// share keys, and viper keeps only the last binding per key.
func (a *app) bindOnRun(cmd *cobra.Command, keys map[string]string) {
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		for key, flag := range keys {
			a.bind(cmd, key, flag)
		}
	}
}

func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// client builds a GUAC client from the config and waits for it if asked
func (a *app) client(ctx context.Context) (*guac.Client, *config.Config, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := guac.NewClient(cfg.Endpoint, guac.WithTimeout(cfg.Timeout))
	if err != nil {
		return nil, nil, err
	}

	if cfg.Wait > 0 {
		logger.Sugar().Infof("Waiting up to %s for GUAC at %s", cfg.Wait, cfg.Endpoint)
		if err := client.WaitReady(ctx, cfg.Wait); err != nil {
			return nil, nil, fmt.Errorf("GUAC not ready: %w", err)
		}
	}
	return client, cfg, nil
}

func vexOptions(cfg *config.Config) []vex.Option {
	var opts []vex.Option
	if cfg.ResolveAllIDs {
		opts = append(opts, vex.WithResolveAllIDs())
	}
	if cfg.PurlProducts {
		opts = append(opts, vex.WithPurlProducts())
	}
	return opts
}
