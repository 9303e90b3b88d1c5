package flash

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type memoryEntry struct {
	flash     Flash
	expiresAt time.Time
}

// MemoryStore keeps flashes in process. Expired entries are dropped on read
// and swept periodically once Start is called.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	cron *cron.Cron
	log  logrus.FieldLogger
}

func NewMemoryStore(ttl time.Duration, log logrus.FieldLogger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		cron:    cron.New(),
		log:     log,
	}
}

func (s *MemoryStore) Put(_ context.Context, key string, f Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{flash: f, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Pop(_ context.Context, key string) (*Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	delete(s.entries, key)
	if !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	f := e.flash
	return &f, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", func() {
		if n := s.Sweep(); n > 0 {
			s.log.WithField("removed", n).Debug("swept expired flashes")
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *MemoryStore) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
