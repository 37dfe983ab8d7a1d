package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory. Sessions do not survive a
// restart; use PostgresStore or RedisStore when they must.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	logger  *slog.Logger
	stopCh  chan struct{}
	once    sync.Once
}

// NewMemoryStore creates an in-memory store. When cleanupInterval is
// positive a goroutine purges expired records on that interval until
// Close is called.
func NewMemoryStore(logger *slog.Logger, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]Record),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		s.startCleanupWorker(cleanupInterval)
	}
	return s
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.TokenHash] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, tokenHash string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, tokenHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, tokenHash)
	return nil
}

func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, rec := range s.records {
		if rec.IsExpired(now) {
			delete(s.records, k)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Count(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.records {
		if !rec.IsExpired(now) {
			n++
		}
	}
	return n, nil
}

// Close stops the cleanup worker. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stopCh) })
	return nil
}

func (s *MemoryStore) startCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval/2)
				removed, err := s.DeleteExpired(ctx, time.Now())
				cancel()
				if err != nil {
					s.logger.Error("failed to clean up expired sessions", "error", err)
					continue
				}
				if removed > 0 {
					s.logger.Debug("expired sessions removed", "count", removed)
				}
			case <-s.stopCh:
				return
			}
		}
	}()
}

var _ Store = (*MemoryStore)(nil)
