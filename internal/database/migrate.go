package database

import (
	"fmt"
)

// CopyStats counts what CopyRuns moved
type CopyStats struct {
	Runs   int
	Stairs int
}

// CopyRuns copies every run of src, oldest first, into dst. Runs get new ids
// in dst; creation times and stairs are kept. With dryRun set nothing is
// written and the stats report what would have been copied.
func CopyRuns(src, dst *Database, dryRun bool) (CopyStats, error) {
	var stats CopyStats

	runs, err := src.ListRuns("", 0)
	if err != nil {
		return stats, err
	}

	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		stairs, err := src.GetRunStairs(run.ID)
		if err != nil {
			return stats, fmt.Errorf("run %d: %w", run.ID, err)
		}
		if !dryRun {
			if _, err := dst.RecordRun(*run, stairs); err != nil {
				return stats, fmt.Errorf("run %d: %w", run.ID, err)
			}
		}
		stats.Runs++
		stats.Stairs += len(stairs)
	}
	return stats, nil
}
