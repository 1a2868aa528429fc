package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/raster-band-mcp/internal/raster"
	"github.com/ironsheep/raster-band-mcp/internal/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var logLevel string

var statsBand int
var statsIncludeNoData bool
var statsNoData float64

func init() {
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to $RASTER_MCP_LOG_LEVEL or info")

	statsCommand.Flags().IntVarP(&statsBand, "band", "b", 1, "1-based band index")
	statsCommand.Flags().BoolVar(&statsIncludeNoData, "include-nodata", false, "count pixels equal to the no-data value")
	statsCommand.Flags().Float64Var(&statsNoData, "nodata", 0, "override the band's no-data value")

	rootCommand.AddCommand(statsCommand, versionCommand)
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

// newLogger configures logging to stderr; stdout is reserved for MCP protocol.
func newLogger() (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level := logLevel
	if level == "" {
		level = os.Getenv("RASTER_MCP_LOG_LEVEL")
	}
	if level == "" {
		return log, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(lvl)
	return log, nil
}

var rootCommand = &cobra.Command{
	Use:   "raster-mcp",
	Short: "MCP server for raster band statistics",
	Long: `raster-mcp serves raster band accessors and statistics over the
MCP protocol on stdin/stdout. Configure it in your MCP client.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		server.Version = Version
		log.WithFields(logrus.Fields{
			"version": Version,
			"built":   BuildTime,
			"commit":  GitCommit,
		}).Debug("starting raster MCP server")

		return server.New(log).Run()
	},
}

var statsCommand = &cobra.Command{
	Use:   "stats <file>",
	Short: "print summary statistics of a raster band as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		r, err := raster.NewCache().Load(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("nodata") {
			if r, err = raster.SetBandNoDataValue(r, statsBand, raster.NoDataOf(statsNoData)); err != nil {
				return err
			}
		}
		log.WithFields(logrus.Fields{"file": args[0], "band": statsBand}).Debug("computing statistics")

		st, err := raster.SummaryStats(r, statsBand, !statsIncludeNoData)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	},
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "raster-mcp %s\n", Version)
		fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
	},
}
