package runs

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/coinsight/internal/domain"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultRunDir   = "./wal/runs"
	runSegmentLimit = 1000
	runMaxSegments  = 100
	runKeyPrefix    = "run_"
)

// WALStore journals evaluation runs in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed run journal under the provided directory.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultRunDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "runs_",
		SegmentThreshold: runSegmentLimit,
		MaxSegments:      runMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init run journal WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the run. Callers must ensure run.ID is set.
func (s *WALStore) Save(run domain.Run) error {
	if s == nil || s.wal == nil {
		return errors.New("run journal is not initialized")
	}
	if run.ID == "" {
		return errors.New("run id is required")
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(err, "marshal run")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, runKeyPrefix+run.ID, payload)
}

// RunsAfter returns all runs written after the provided WAL index.
func (s *WALStore) RunsAfter(index uint64) ([]domain.RunRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("run journal is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.RunRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		key, payload, ok := s.wal.Get(idx)
		if !ok || !strings.HasPrefix(key, runKeyPrefix) {
			continue
		}
		var run domain.Run
		if err := json.Unmarshal(payload, &run); err != nil {
			return nil, errors.Wrap(err, "decode run")
		}
		records = append(records, domain.RunRecord{Index: idx, Run: run})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("run journal is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
