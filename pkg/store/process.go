package store

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ConvertFunc converts the document at inputPath and writes the result. Each
// invocation is hermetic, so files can be processed in parallel with no
// required ordering.
type ConvertFunc func(ctx context.Context, inputPath string) error

// Summary reports the outcome of one folder run.
type Summary struct {
	Processed int
	Succeeded int
	Failed    map[string]string
}

// ProcessFolder converts every .json document under dir with up to workers
// conversions in flight. A file that fails is reported in the summary and
// never aborts the others; only listing the folder itself can fail.
func ProcessFolder(ctx context.Context, dir string, workers int, convert ConvertFunc) (*Summary, error) {
	paths, err := ListJSONFiles(dir)
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	summary := &Summary{
		Processed: len(paths),
		Failed:    make(map[string]string),
	}
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, path := range paths {
		group.Go(func() error {
			if convertErr := convert(groupCtx, path); convertErr != nil {
				slog.Error("convert document", "path", path, "error", convertErr)
				mu.Lock()
				summary.Failed[path] = convertErr.Error()
				mu.Unlock()
				return nil
			}
			mu.Lock()
			summary.Succeeded++
			mu.Unlock()
			return nil
		})
	}
	group.Wait()
	return summary, nil
}
