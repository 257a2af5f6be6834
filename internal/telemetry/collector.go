// Package telemetry writes per-tick simulation stats to CSV for offline
// balance analysis. Output is disabled when no directory is configured.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"deadlock/server/internal/config"
)

// Sample is one CSV row of per-tick stats.
type Sample struct {
	Tick           uint64  `csv:"tick"`
	ElapsedSeconds float64 `csv:"elapsed_s"`
	Entities       int     `csv:"entities"`
	Zombies        int     `csv:"zombies"`
	Projectiles    int     `csv:"projectiles"`
	Pickups        int     `csv:"pickups"`
	PairEvents     int     `csv:"pair_events"`
	ObstacleClamps int     `csv:"obstacle_clamps"`
	ProjectileHits int     `csv:"projectile_hits"`
	Removed        int     `csv:"removed"`
	Score          int     `csv:"score"`
	StepMillis     float64 `csv:"step_ms"`
}

// Collector buffers samples and appends them to ticks.csv in batches.
type Collector struct {
	cfg           config.TelemetryConfig
	file          *os.File
	buffer        []Sample
	headerWritten bool
	ticksSeen     int
}

// NewCollector opens the output file. A nil collector (empty output dir) is
// valid and drops everything.
func NewCollector(cfg config.TelemetryConfig) (*Collector, error) {
	if cfg.OutputDir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	path := filepath.Join(cfg.OutputDir, "ticks.csv")
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &Collector{cfg: cfg, file: file}, nil
}

// Record buffers one tick's sample, honoring the sampling stride, and flushes
// when the batch is full.
func (c *Collector) Record(sample Sample) error {
	if c == nil {
		return nil
	}
	c.ticksSeen++
	if stride := c.cfg.SampleEvery; stride > 1 && c.ticksSeen%stride != 0 {
		return nil
	}
	c.buffer = append(c.buffer, sample)
	if c.cfg.FlushEvery > 0 && len(c.buffer) >= c.cfg.FlushEvery {
		return c.Flush()
	}
	return nil
}

// Flush appends the buffered samples to the CSV file.
func (c *Collector) Flush() error {
	if c == nil || len(c.buffer) == 0 {
		return nil
	}
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(c.buffer, c.file)
		c.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(c.buffer, c.file)
	}
	if err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	c.buffer = c.buffer[:0]
	return nil
}

// Close flushes and releases the output file.
func (c *Collector) Close() error {
	if c == nil {
		return nil
	}
	flushErr := c.Flush()
	closeErr := c.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
