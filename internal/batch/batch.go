// Package batch exports many resources concurrently. Every file is handled
// by one worker with its own buffers; workers share only the read-only
// config.
package batch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/goopsie/s2FileTools/internal/config"
)

// Result is the outcome of one file.
type Result struct {
	Path    string
	Output  string
	Kind    Kind
	Elapsed time.Duration
	Err     error
}

// Collect walks root and returns the files cfg selects, sorted.
func Collect(cfg *config.Config, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.Matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	sort.Strings(paths)
	return paths, nil
}

// Run exports paths with cfg.Workers workers. Cancelling ctx stops
// dispatching; files never started get ctx.Err() as their error.
func Run(ctx context.Context, cfg *config.Config, log *logrus.Entry, paths []string) []Result {
	total := len(paths)
	results := make([]Result, total)
	var processed, failed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					log.WithFields(logrus.Fields{
						"done":   p,
						"total":  total,
						"failed": failed.Load(),
						"rate":   float64(p) / time.Since(start).Seconds(),
					}).Info("progress")
				}
			}
		}
	}()

	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := Process(cfg, paths[i])
				results[i] = res
				processed.Add(1)

				entry := log.WithFields(logrus.Fields{
					"file":    paths[i],
					"kind":    res.Kind,
					"elapsed": res.Elapsed,
				})
				if res.Err != nil {
					failed.Add(1)
					entry.WithError(res.Err).Warn("export failed")
				} else {
					entry.WithField("output", res.Output).Debug("exported")
				}
			}
		}()
	}

	dispatched := 0
dispatch:
	for ; dispatched < total; dispatched++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- dispatched:
		}
	}
	close(jobs)
	wg.Wait()
	close(done)

	for i := dispatched; i < total; i++ {
		results[i] = Result{Path: paths[i], Err: ctx.Err()}
	}

	log.WithFields(logrus.Fields{
		"total":   total,
		"failed":  failed.Load(),
		"skipped": total - dispatched,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("batch complete")
	return results
}
