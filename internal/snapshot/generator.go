// Package snapshot generates the date-stamped snapshot files derived from the
// base dataset.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-snapshots/internal/article"
	"github.com/yourusername/live-snapshots/internal/config"
	"github.com/yourusername/live-snapshots/internal/logging"
	"github.com/yourusername/live-snapshots/internal/storage"
)

var (
	// ErrEmptyDataset is returned when the base dataset has no articles.
	ErrEmptyDataset = errors.New("no articles in base dataset")
	// ErrInvalidDate is returned for a single-date request that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date (expected YYYY-MM-DD)")
)

const secondsPerDay = 24 * 60 * 60

// Status describes what happened to one date.
type Status string

// Possible per-date outcomes.
const (
	StatusGenerated Status = "generated"
	StatusExists    Status = "exists"
	StatusDryRun    Status = "dry-run"
)

// Options controls which snapshots are produced and how.
type Options struct {
	Start        time.Time
	End          time.Time
	MaxArticles  int
	DefaultTime  string
	DedupeByLink bool
	DryRun       bool
}

// OptionsFromConfig maps the snapshot configuration onto generator options.
func OptionsFromConfig(cfg config.SnapshotConfig) Options {
	return Options{
		Start:        cfg.Start(),
		End:          cfg.End(),
		MaxArticles:  cfg.MaxArticles,
		DefaultTime:  cfg.DefaultTime,
		DedupeByLink: cfg.DedupeByLink,
	}
}

// Result is the outcome for a single date.
type Result struct {
	Date     string
	File     string
	Status   Status
	Rotation int
	Articles int
	Bytes    int
}

// Summary aggregates the results of a run.
type Summary struct {
	Results   []Result
	Generated int
	Existing  int
	DryRun    int
	// OnDisk is the number of snapshot files found in the output directory
	// for the years the range covers, after the run.
	OnDisk int
}

// Processed returns how many dates were visited, whether written or already present.
func (s *Summary) Processed() int {
	return len(s.Results)
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusGenerated:
		s.Generated++
	case StatusExists:
		s.Existing++
	case StatusDryRun:
		s.DryRun++
	}
}

// Generator writes one snapshot per date from a loaded base dataset.
type Generator struct {
	dataset *storage.BaseDataset
	store   *storage.SnapshotStore
	opts    Options
	now     func() time.Time
	write   func(date string, data []byte) error
	logger  *logrus.Entry
}

// NewGenerator creates a generator over dataset. It fails with ErrEmptyDataset
// when the dataset has no articles.
func NewGenerator(dataset *storage.BaseDataset, store *storage.SnapshotStore, opts Options, logger logrus.FieldLogger) (*Generator, error) {
	if dataset == nil || len(dataset.Data) == 0 {
		return nil, ErrEmptyDataset
	}
	if opts.MaxArticles < 1 {
		return nil, fmt.Errorf("max articles must be at least 1, got %d", opts.MaxArticles)
	}
	if opts.DefaultTime == "" {
		opts.DefaultTime = article.DefaultTimeOfDay
	}

	return &Generator{
		dataset: dataset,
		store:   store,
		opts:    opts,
		now:     time.Now,
		write:   store.Write,
		logger:  logging.Component(logger, "snapshot.generator"),
	}, nil
}

// Open locates and loads the base dataset under workdir and returns a
// generator writing next to it.
func Open(cfg config.SnapshotConfig, workdir string, logger logrus.FieldLogger) (*Generator, error) {
	path, err := storage.Locate(workdir, cfg.InputFile, cfg.FallbackDirs)
	if err != nil {
		return nil, err
	}

	dataset, err := storage.NewJSONStore(path).Load()
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"path":     path,
		"articles": len(dataset.Data),
	}).Info("Base data loaded")

	store := storage.NewSnapshotStore(filepath.Dir(path), cfg.FilePrefix)
	return NewGenerator(dataset, store, OptionsFromConfig(cfg), logger)
}

// SetClock replaces the clock used for generatedAt.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// SetDryRun toggles dry-run mode, in which snapshots are built but not written.
func (g *Generator) SetDryRun(dryRun bool) {
	g.opts.DryRun = dryRun
}

// Store returns the snapshot store the generator writes to.
func (g *Generator) Store() *storage.SnapshotStore {
	return g.store
}

// Run visits every date from Start through End in ascending order, writing
// the snapshots that are not already on disk. Existing files are never
// touched. The context is checked between dates.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	g.logger.WithFields(logrus.Fields{
		"start":    g.opts.Start.Format(config.DateLayout),
		"end":      g.opts.End.Format(config.DateLayout),
		"articles": len(g.dataset.Data),
		"dry_run":  g.opts.DryRun,
	}).Info("Starting snapshot run")

	for date := g.opts.Start; !date.After(g.opts.End); date = date.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := g.generate(date)
		if err != nil {
			return summary, err
		}
		summary.add(result)
	}

	onDisk, err := g.store.Count(years(g.opts.Start, g.opts.End))
	if err != nil {
		g.logger.WithError(err).WithField("dir", g.store.Dir()).Warn("Could not count snapshots on disk")
	}
	summary.OnDisk = onDisk

	g.logger.WithFields(logrus.Fields{
		"processed": summary.Processed(),
		"generated": summary.Generated,
		"existing":  summary.Existing,
		"on_disk":   summary.OnDisk,
	}).Info("Snapshot run complete")

	return summary, nil
}

// GenerateDate produces the snapshot for a single YYYY-MM-DD date, which may
// lie outside the configured range. The rotation is still measured from Start.
func (g *Generator) GenerateDate(ctx context.Context, value string) (Result, error) {
	date, err := config.ParseDate(value)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return g.generate(date)
}

// Build returns the snapshot for date and the rotation applied, without
// touching the filesystem.
func (g *Generator) Build(date time.Time) (*storage.Snapshot, int, error) {
	stamp := date.Format(config.DateLayout)
	rotation := article.Offset(DaysBetween(g.opts.Start, date), len(g.dataset.Data))

	rotated := article.Rotate(g.dataset.Data, rotation)
	if g.opts.DedupeByLink {
		rotated = article.DedupeByLink(rotated)
	}

	limit := min(g.opts.MaxArticles, len(rotated))
	data := make([]article.Article, 0, limit)
	for i, a := range rotated[:limit] {
		restamped, err := article.Restamp(a, stamp, g.opts.DefaultTime)
		if err != nil {
			return nil, 0, fmt.Errorf("article %d for %s: %w", i, stamp, err)
		}
		data = append(data, restamped)
	}

	return &storage.Snapshot{
		GeneratedAt: g.now().UTC().Format(storage.GeneratedAtLayout),
		Filters:     g.dataset.Filters,
		Data:        data,
	}, rotation, nil
}

func (g *Generator) generate(date time.Time) (Result, error) {
	stamp := date.Format(config.DateLayout)
	result := Result{Date: stamp, File: g.store.Filename(stamp)}
	log := g.logger.WithFields(logrus.Fields{"date": stamp, "file": result.File})

	exists, err := g.store.Exists(stamp)
	if err != nil {
		return result, fmt.Errorf("check %s: %w", result.File, err)
	}
	if exists {
		result.Status = StatusExists
		log.Info("Already exists")
		return result, nil
	}

	snap, rotation, err := g.Build(date)
	if err != nil {
		return result, err
	}
	data, err := storage.Encode(snap)
	if err != nil {
		return result, fmt.Errorf("encode %s: %w", result.File, err)
	}

	result.Rotation = rotation
	result.Articles = len(snap.Data)
	result.Bytes = len(data)
	log = log.WithFields(logrus.Fields{"rotation": rotation, "articles": result.Articles})

	if g.opts.DryRun {
		result.Status = StatusDryRun
		log.Info("Dry run, not written")
		return result, nil
	}

	if err := g.write(stamp, data); err != nil {
		if errors.Is(err, storage.ErrSnapshotExists) {
			result.Status = StatusExists
			log.Warn("Created concurrently, left untouched")
			return result, nil
		}
		return result, fmt.Errorf("write %s: %w", result.File, err)
	}

	result.Status = StatusGenerated
	log.Info("Generated")
	return result, nil
}

// DaysBetween returns the whole number of days from start to date. Both are
// expected at midnight UTC; the result is negative when date precedes start.
// Unix seconds are used because a time.Duration overflows after about 292 years.
func DaysBetween(start, date time.Time) int {
	return int((date.Unix() - start.Unix()) / secondsPerDay)
}

func years(start, end time.Time) []int {
	out := []int{}
	for y := start.Year(); y <= end.Year(); y++ {
		out = append(out, y)
	}
	return out
}
