package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sartorproj/blockbootstrap/bootstrap"
	"github.com/sartorproj/blockbootstrap/internal/config"
	"github.com/sartorproj/blockbootstrap/timeseries"
)

// run loads the input series, writes cfg.Replicates bootstrap samples and
// returns the paths written.
func run(cfg *config.Config, logger logrus.FieldLogger) ([]string, error) {
	log := logger.WithField("run_id", uuid.NewString())
	started := time.Now()

	opts := timeseries.DefaultCSVOptions()
	opts.DateColumn = cfg.DateColumn
	opts.DateFormat = cfg.DateFormat
	opts.ValueColumns = cfg.ValueColumns

	series, err := timeseries.LoadCSV(cfg.Input, opts)
	if err != nil {
		return nil, err
	}
	series.Name = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(cfg.Input), timeseries.ZstdSuffix), ".csv")

	log.WithFields(logrus.Fields{
		"input":   cfg.Input,
		"rows":    series.Len(),
		"columns": series.Columns,
	}).Info("input loaded")

	unit, err := cfg.Unit()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	ropts := []bootstrap.Option{
		bootstrap.WithBlockLength(cfg.BlockLength),
		bootstrap.WithUnit(unit),
		bootstrap.WithLogger(log),
		bootstrap.WithMetrics(bootstrap.NewMetrics(reg)),
	}
	if cfg.LegacyReseed {
		log.Warn("legacy reseeding enabled: seeded replicates repeat a single block")
		ropts = append(ropts, bootstrap.WithLegacyReseed())
	}

	r, err := bootstrap.New(series, ropts...)
	if err != nil {
		return nil, fmt.Errorf("prepare resampler: %w", err)
	}

	log.WithFields(logrus.Fields{
		"block_length": r.BlockLength().String(),
		"grid_len":     r.GridLen(),
		"coverage":     r.Coverage(),
	}).Info("resampler ready")

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	ext := ".csv"
	if cfg.Compress || strings.HasSuffix(cfg.Input, timeseries.ZstdSuffix) {
		ext += timeseries.ZstdSuffix
	}

	paths := make([]string, 0, cfg.Replicates)
	for i := 0; i < cfg.Replicates; i++ {
		var sample *timeseries.Series
		if cfg.Seeded {
			sample, err = r.SampleSeed(cfg.Seed + uint64(i))
		} else {
			sample, err = r.Sample()
		}
		if err != nil {
			return paths, fmt.Errorf("replicate %d: %w", i, err)
		}

		path := filepath.Join(cfg.OutputDir, fmt.Sprintf("replicate_%04d%s", i, ext))
		if err := timeseries.SaveCSV(sample, path); err != nil {
			return paths, fmt.Errorf("write replicate %d: %w", i, err)
		}
		paths = append(paths, path)
	}

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, reg); err != nil {
			return paths, fmt.Errorf("write metrics: %w", err)
		}
	}

	log.WithFields(logrus.Fields{
		"replicates": len(paths),
		"output_dir": cfg.OutputDir,
		"elapsed":    time.Since(started).String(),
	}).Info("bootstrap complete")

	return paths, nil
}
