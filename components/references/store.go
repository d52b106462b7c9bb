package references

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrDuplicate reports a name already used by the same model and parent.
	// Names compare case-insensitively.
	ErrDuplicate = errors.New("references: an entry with this name already exists")
	// ErrNotFound reports an unknown reference id.
	ErrNotFound = errors.New("references: not found")
)

// Reference is one stored entry.
type Reference struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateInput carries a validated creation request.
type CreateInput struct {
	Model    string
	Name     string
	ParentID string
}

// Store persists references.
type Store interface {
	Create(ctx context.Context, in CreateInput) (Reference, error)
	Get(ctx context.Context, model, id string) (Reference, error)
	// List returns the model's entries under parentID ordered by name. An
	// empty parentID lists every entry of the model.
	List(ctx context.Context, model, parentID string) ([]Reference, error)
}

// MemoryStore keeps references in process.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Reference
	names map[string]string
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]Reference),
		names: make(map[string]string),
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, in CreateInput) (Reference, error) {
	if err := ctx.Err(); err != nil {
		return Reference{}, err
	}
	key := nameKey(in.Model, in.ParentID, in.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.names[key]; exists {
		return Reference{}, ErrDuplicate
	}
	ref := Reference{
		ID:        uuid.NewString(),
		Model:     in.Model,
		Name:      in.Name,
		ParentID:  in.ParentID,
		CreatedAt: s.now().UTC(),
	}
	s.byID[ref.ID] = ref
	s.names[key] = ref.ID
	return ref, nil
}

func (s *MemoryStore) Get(ctx context.Context, model, id string) (Reference, error) {
	if err := ctx.Err(); err != nil {
		return Reference{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.byID[id]
	if !ok || ref.Model != model {
		return Reference{}, ErrNotFound
	}
	return ref, nil
}

func (s *MemoryStore) List(ctx context.Context, model, parentID string) ([]Reference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]Reference, 0)
	for _, ref := range s.byID {
		if ref.Model != model {
			continue
		}
		if parentID != "" && ref.ParentID != parentID {
			continue
		}
		out = append(out, ref)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a == b {
			return out[i].ID < out[j].ID
		}
		return a < b
	})
	return out, nil
}

func nameKey(model, parentID, name string) string {
	return model + "\x00" + parentID + "\x00" + strings.ToLower(strings.TrimSpace(name))
}
