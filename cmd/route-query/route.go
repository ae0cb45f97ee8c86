package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/saferoute-backend/internal/config"
	"github.com/smarttransit/saferoute-backend/internal/repository"
	"github.com/smarttransit/saferoute-backend/internal/services"
	"github.com/spf13/cobra"
)

type sourceFlags struct {
	csvDir      string
	gtfsPath    string
	riskFile    string
	databaseURL string
	maxSnap     float64
	verbose     bool
}

var flags sourceFlags

var routeCmd = &cobra.Command{
	Use:   "route START_LAT START_LON DEST_LAT DEST_LON",
	Short: "Print the lowest-risk route between two coordinates as JSON",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords := make([]float64, 4)
		for i, arg := range args {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("argument %d (%q) is not a number", i+1, arg)
			}
			coords[i] = v
		}

		svc, closeFn, err := loadRoutingService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		outcome, err := svc.Query(cmd.Context(), coords[0], coords[1], coords[2], coords[3])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if !outcome.Found() {
			if err := enc.Encode(map[string]interface{}{"status": "not_found", "reason": outcome.Reason}); err != nil {
				return err
			}
			return fmt.Errorf("no route found (%s)", outcome.Reason)
		}
		return enc.Encode(outcome.Result)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load the network and print graph statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := loadRoutingService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()

		health := svc.Health()
		fmt.Fprintf(cmd.OutOrStdout(), "stops: %d\nsegments: %d\nloaded: %s\n",
			health.NodesLoaded, health.EdgesLoaded, health.LoadedAt.Format(time.RFC3339))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{routeCmd, statsCmd} {
		c.Flags().StringVar(&flags.csvDir, "csv", "", "directory with stops.csv, risk.csv, stop_times.csv, trips.csv")
		c.Flags().StringVar(&flags.gtfsPath, "gtfs", "", "GTFS static zip")
		c.Flags().StringVar(&flags.riskFile, "risk", "", "risk CSV (stop_id,risk_score) used with --gtfs")
		c.Flags().StringVar(&flags.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL of the analytical store")
		c.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log load progress to stderr")
		c.MarkFlagsMutuallyExclusive("csv", "gtfs", "database-url")
	}
	routeCmd.Flags().Float64Var(&flags.maxSnap, "max-snap", 0, "reject endpoints farther than this many meters from a stop")

	rootCmd.AddCommand(routeCmd, statsCmd)
}

func sourceConfig() *config.Config {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:                flags.databaseURL,
			Driver:             "postgres",
			MaxConnections:     2,
			MaxIdleConnections: 1,
			ConnMaxLifetime:    time.Minute,
		},
		Source: config.SourceConfig{
			Kind:           config.SourcePostgres,
			StopsTable:     "stg_gtfs_stops",
			RiskTable:      "int_network_risk",
			StopTimesTable: "stg_gtfs_stop_times",
			TripsTable:     "stg_gtfs_trips",
		},
	}

	switch {
	case flags.csvDir != "":
		cfg.Source.Kind = config.SourceCSV
		cfg.Source.DataDir = flags.csvDir
	case flags.gtfsPath != "":
		cfg.Source.Kind = config.SourceGTFS
		cfg.Source.GTFSPath = flags.gtfsPath
		cfg.Source.RiskFile = flags.riskFile
	}
	return cfg
}

func loadRoutingService(ctx context.Context) (*services.RoutingService, func() error, error) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if flags.verbose {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
	}

	source, closeFn, err := repository.OpenSource(sourceConfig())
	if err != nil {
		return nil, nil, err
	}

	svc := services.NewRoutingService(source, logger, config.RoutingConfig{MaxSnapDistanceMeters: flags.maxSnap})
	if err := svc.Load(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return svc, closeFn, nil
}
