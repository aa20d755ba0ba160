package taskstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"qcloud/internal/domain"
)

// batchKeyPrefix distinguishes batch entries from single task ids.
const batchKeyPrefix = "batch:"

var ErrStoreClosed = errors.New("task store is closed")

// Entry is one submitted task or batch remembered between CLI invocations.
// Exactly one of Task and Batch is set.
type Entry struct {
	ID        string              `json:"id"`
	Task      *domain.TaskHandle  `json:"task,omitempty"`
	Batch     *domain.BatchHandle `json:"batch,omitempty"`
	Status    domain.TaskStatus   `json:"status"`
	Error     string              `json:"error,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// IsBatch reports whether the entry tracks a batch.
func (e Entry) IsBatch() bool {
	return e.Batch != nil
}

// Backend returns the backend of the tracked task or batch.
func (e Entry) Backend() domain.BackendKind {
	if e.Batch != nil {
		return e.Batch.Backend
	}
	if e.Task != nil {
		return e.Task.Backend
	}
	return 0
}

func (e Entry) submittedAt() time.Time {
	if e.Batch != nil {
		return e.Batch.SubmittedAt
	}
	if e.Task != nil {
		return e.Task.SubmittedAt
	}
	return time.Time{}
}

// BatchID returns the key a batch handle is stored under.
func BatchID(h domain.BatchHandle) string {
	if len(h.Steps) == 0 {
		return ""
	}
	return batchKeyPrefix + h.Steps[0].TaskID
}

type Store struct {
	mu     sync.RWMutex
	db     *bolt.DB
	path   string
	closed bool
	now    func() time.Time
}

func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("task store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, fmt.Errorf("ensure task store dir: %w", err)
	}
	db, err := bolt.Open(trimmed, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: trimmed, now: time.Now}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// PutTask records a freshly submitted task.
func (s *Store) PutTask(h domain.TaskHandle) error {
	if strings.TrimSpace(h.TaskID) == "" {
		return domain.Configf("taskstore.PutTask", "task id is required")
	}
	handle := h
	return s.put(Entry{ID: h.TaskID, Task: &handle, Status: domain.TaskStatusWaiting})
}

// PutBatch records a freshly submitted batch and returns its id.
func (s *Store) PutBatch(h domain.BatchHandle) (string, error) {
	id := BatchID(h)
	if id == "" {
		return "", domain.Configf("taskstore.PutBatch", "batch has no steps")
	}
	handle := h
	return id, s.put(Entry{ID: id, Batch: &handle, Status: domain.TaskStatusWaiting})
}

func (s *Store) put(entry Entry) error {
	entry.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", entry.ID, err)
	}
	return s.update(func(tx *bolt.Tx) error {
		bucket, err := entriesBucket(tx)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(entry.ID), data)
	})
}

// SetStatus records the last observed state of id. cause is kept as text
// when the task ended in failure.
func (s *Store) SetStatus(id string, status domain.TaskStatus, cause error) error {
	return s.update(func(tx *bolt.Tx) error {
		bucket, err := entriesBucket(tx)
		if err != nil {
			return err
		}
		entry, err := decodeEntry(id, bucket.Get([]byte(id)))
		if err != nil {
			return err
		}
		entry.Status = status
		entry.Error = ""
		if cause != nil {
			entry.Error = cause.Error()
		}
		entry.UpdatedAt = s.now().UTC()
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode entry %s: %w", id, err)
		}
		return bucket.Put([]byte(id), data)
	})
}

func (s *Store) Get(id string) (Entry, error) {
	var entry Entry
	err := s.view(func(tx *bolt.Tx) error {
		bucket, err := entriesBucket(tx)
		if err != nil {
			return err
		}
		entry, err = decodeEntry(id, bucket.Get([]byte(id)))
		return err
	})
	return entry, err
}

// List returns every entry, oldest submission first.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.view(func(tx *bolt.Tx) error {
		bucket, err := entriesBucket(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(key, value []byte) error {
			entry, err := decodeEntry(string(key), value)
			if err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].submittedAt().Before(entries[j].submittedAt())
	})
	return entries, nil
}

func (s *Store) Delete(id string) error {
	return s.update(func(tx *bolt.Tx) error {
		bucket, err := entriesBucket(tx)
		if err != nil {
			return err
		}
		if bucket.Get([]byte(id)) == nil {
			return notFound(id)
		}
		return bucket.Delete([]byte(id))
	})
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.db.Update(fn)
}

func decodeEntry(id string, raw []byte) (Entry, error) {
	if raw == nil {
		return Entry{}, notFound(id)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry{}, fmt.Errorf("decode entry %s: %w", id, err)
	}
	return entry, nil
}

func notFound(id string) error {
	return domain.E(domain.CodeNotFound, "taskstore", "", domain.ErrTaskNotFound).WithMeta("id", id)
}
