package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

const (
	iterationsKey = "iterations"
	sizesKey      = "sizes"
	orderKey      = "order"
	sendersKey    = "senders"
	sinksKey      = "sinks"
	verboseKey    = "verbose"
	metricsKey    = "metrics"
)

func main() {
	cmd := &cli.Command{
		Name:  "gluebench",
		Usage: "Measure and verify the change propagation engine",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  verboseKey,
				Usage: "Log transaction boundaries at debug level",
			},
			&cli.BoolFlag{
				Name:  metricsKey,
				Usage: "Print the collected Prometheus metrics after the run",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "latency",
				Usage: "Per-operation latency of the reference list, array changes and derived arrays",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  iterationsKey,
						Usage: "Operations measured per benchmark",
						Value: 1000,
					},
					&cli.StringFlag{
						Name:  sizesKey,
						Usage: "Comma separated collection sizes",
						Value: "100,1000,10000",
					},
					&cli.UintFlag{
						Name:  orderKey,
						Usage: "Order of the reference list B-tree",
						Value: 65,
					},
				},
				Action: latency,
			},
			{
				Name:  "throughput",
				Usage: "Concurrent signal delivery and derived array verification",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  iterationsKey,
						Usage: "Values sent by each sender",
						Value: 100000,
					},
					&cli.UintFlag{
						Name:  sendersKey,
						Usage: "Concurrent senders",
						Value: 8,
					},
					&cli.UintFlag{
						Name:  sinksKey,
						Usage: "Sinks attached to the signal",
						Value: 4,
					},
				},
				Action: throughput,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup configures the default logger and the metrics registry shared by
// every benchmark in one run.
func setup(cmd *cli.Command) (*slog.Logger, *metrics, func()) {
	level := slog.LevelInfo
	if cmd.Bool(verboseKey) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	m := newMetrics(registry)
	report := func() {
		if !cmd.Bool(metricsKey) {
			return
		}
		if err := printMetrics(os.Stdout, registry); err != nil {
			logger.Error("gathering metrics", "error", err)
		}
	}
	return logger, m, report
}

func parseSizes(s string) ([]int, error) {
	var sizes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parsing size %q: %w", field, err)
		}
		if n < 2 {
			return nil, fmt.Errorf("size %d is too small", n)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no sizes given")
	}
	return sizes, nil
}
