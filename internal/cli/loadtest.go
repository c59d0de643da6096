package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/julianstephens/go-utils/cliutil"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/julianstephens/walog/internal/walog/catalog"
	"github.com/julianstephens/walog/internal/walog/loadtest"
	"github.com/julianstephens/walog/internal/walog/metrics"
	"github.com/julianstephens/walog/internal/walog/seq"
	"github.com/julianstephens/walog/internal/walog/wal"
)

// LoadTestCmd opens a fresh log and hammers it with concurrent writers.
type LoadTestCmd struct {
	Address   string `help:"Server address the log belongs to" default:"${address}"`
	Writers   int    `help:"Concurrent writer goroutines"        default:"4"`
	Batches   int    `help:"LogManyTablets calls per writer"     default:"100"`
	Tablets   int    `help:"Tablets touched by each call"        default:"4"`
	Mutations int    `help:"Mutations per tablet per call"       default:"10"`
	ValueSize int    `help:"Bytes per mutation value"            default:"64"`
	NoCatalog bool   `help:"Do not record the log in the catalog"`
}

func (c *LoadTestCmd) Run(g *Globals) error {
	cfg, err := g.Config()
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not load config: %v", err))
		return err
	}

	reg := prometheus.NewRegistry()
	opts := wal.Options{
		Config:  cfg,
		Volumes: g.Volumes(),
		Metrics: metrics.New(reg),
		Logger:  g.Logger,
	}
	if !c.NoCatalog {
		cat, err := catalog.Open(cfg.CatalogPath(), nil, g.Logger)
		if err != nil {
			cliutil.PrintError(fmt.Sprintf("Could not open catalog: %v", err))
			return err
		}
		defer func() { _ = cat.Close() }()
		opts.Tracker = cat
	}

	l, err := wal.New(opts)
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Invalid configuration: %v", err))
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := l.Open(ctx, c.Address); err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not open log: %v", err))
		return err
	}

	alloc, err := seq.NewCounterAllocator(1)
	if err != nil {
		_ = l.Close()
		return err
	}

	report, runErr := loadtest.Run(ctx, l, alloc, loadtest.Options{
		Writers:   c.Writers,
		Batches:   c.Batches,
		Tablets:   c.Tablets,
		Mutations: c.Mutations,
		ValueSize: c.ValueSize,
	}, g.Logger)

	if err := l.Close(); err != nil && runErr == nil {
		runErr = err
	}

	fmt.Printf("log:        %s\n", l.Path())
	fmt.Printf("calls:      %d (%d records, %d mutations)\n", report.Calls, report.Records, report.Mutations)
	fmt.Printf("elapsed:    %s\n", report.Elapsed)
	fmt.Printf("wait:       mean %s, p99 %s, max %s\n", report.MeanWait, report.P99Wait, report.MaxWait)
	fmt.Printf("bytes:      %d\n", l.Offset())
	printMetrics(reg)

	if runErr != nil {
		cliutil.PrintError(fmt.Sprintf("Load test failed: %v", runErr))
		return runErr
	}
	return nil
}

// printMetrics writes one line per collected series.
func printMetrics(g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		cliutil.PrintError(fmt.Sprintf("Could not gather metrics: %v", err))
		return
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			name := mf.GetName() + labels(metric.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Printf("  %s %.0f\n", name, metric.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				mean := 0.0
				if h.GetSampleCount() > 0 {
					mean = h.GetSampleSum() / float64(h.GetSampleCount())
				}
				fmt.Printf("  %s count=%d mean=%.6g\n", name, h.GetSampleCount(), mean)
			}
		}
	}
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	out := "{"
	for i, p := range pairs {
		if i > 0 {
			out += ","
		}
		out += p.GetName() + "=" + p.GetValue()
	}
	return out + "}"
}
