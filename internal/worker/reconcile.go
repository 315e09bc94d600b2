package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xonix-directory/internal/domain"
	"github.com/xonix-directory/internal/store"
)

// Report summarizes one reconciliation pass
type Report struct {
	Orphans  []string      `json:"orphans"`
	Missing  []string      `json:"missing"`
	Corrupt  []string      `json:"corrupt"`
	Adopted  int           `json:"adopted"`
	Duration time.Duration `json:"duration"`
}

// Clean reports whether the id list and record files agree
func (r Report) Clean() bool {
	return len(r.Orphans) == 0 && len(r.Missing) == 0 && len(r.Corrupt) == 0
}

// Reconciler compares the id list with the record files on disk
type Reconciler struct {
	registry *store.Registry
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(registry *store.Registry, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		registry: registry,
		logger:   logger,
	}
}

// RunOnce runs a single reconciliation pass. With repair set, orphan
// records are appended to the id list.
func (w *Reconciler) RunOnce(repair bool) (Report, error) {
	w.logger.Info("starting reconciliation", "repair", repair)
	startTime := time.Now()

	repo := w.registry.Repository()
	onDisk, err := repo.RecordIDs()
	if err != nil {
		return Report{}, fmt.Errorf("listing record files: %w", err)
	}

	listed := make(map[string]bool, w.registry.Count())
	var report Report
	for _, id := range w.registry.IDs() {
		listed[id] = true
		if _, err := repo.Load(id); err != nil {
			if errors.Is(err, domain.ErrCorruptRecord) {
				report.Corrupt = append(report.Corrupt, id)
			} else {
				report.Missing = append(report.Missing, id)
			}
		}
	}
	for _, id := range onDisk {
		if !listed[id] {
			report.Orphans = append(report.Orphans, id)
		}
	}

	if repair && len(report.Orphans) > 0 {
		before := w.registry.Count()
		if err := w.registry.Adopt(report.Orphans); err != nil {
			return report, fmt.Errorf("adopting orphans: %w", err)
		}
		report.Adopted = w.registry.Count() - before
	}

	report.Duration = time.Since(startTime)
	w.logger.Info("reconciliation completed",
		"duration", report.Duration,
		"orphans", len(report.Orphans),
		"missing", len(report.Missing),
		"corrupt", len(report.Corrupt),
		"adopted", report.Adopted,
	)
	return report, nil
}
