package logging

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const logFilePrefix = "backoffice_"

// retention prunes session log files in one directory. Session logs are named
// backoffice_<YYYYMMDD_HHMMSS>_PID<pid>_<command>.log, so name order is start
// order.
type retention struct {
	dir string
	// keep is how many existing logs survive a prune.
	keep int
}

// newRetention keeps cfg.MaxFiles logs in dir counting the one about to be
// opened. A non-positive MaxFiles disables pruning.
func newRetention(dir string, cfg Config) retention {
	keep := cfg.MaxFiles - 1
	if cfg.MaxFiles <= 0 {
		keep = -1
	}
	return retention{dir: dir, keep: keep}
}

func isSessionLog(name string) bool {
	return strings.HasPrefix(name, logFilePrefix) && strings.HasSuffix(name, ".log")
}

// prune removes the oldest session logs beyond the retention limit and
// returns the paths it removed.
func (r retention) prune() ([]string, error) {
	if r.keep < 0 {
		return nil, nil
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && isSessionLog(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	if len(names) <= r.keep {
		return nil, nil
	}
	slices.Sort(names)

	var removed []string
	var errs []error
	for _, name := range names[:len(names)-r.keep] {
		path := filepath.Join(r.dir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, path)
	}
	return removed, errors.Join(errs...)
}
