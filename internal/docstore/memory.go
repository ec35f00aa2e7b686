package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory implements Store in process memory. Documents are stored as
// JSON so reads and writes behave like the Mongo implementation:
// mutations to a document after Put are not visible to later Gets.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]json.RawMessage
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]json.RawMessage)}
}

func (s *Memory) Get(ctx context.Context, collection, key string, out any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.data[collection][key]
	if !ok {
		return &ErrNotFound{Collection: collection, Key: key}
	}
	return json.Unmarshal(raw, out)
}

func (s *Memory) Put(ctx context.Context, collection string, doc any) (string, error) {
	m, err := toMap(doc)
	if err != nil {
		return "", err
	}

	key, _ := m["_id"].(string)
	if key == "" {
		key = uuid.NewString()
		m["_id"] = key
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data[collection] == nil {
		s.data[collection] = make(map[string]json.RawMessage)
	}
	if _, exists := s.data[collection][key]; exists {
		return "", &ErrConflict{Collection: collection, Key: key}
	}
	s.data[collection][key] = raw
	return key, nil
}

func (s *Memory) Query(ctx context.Context, collection string, filter map[string]any, opts QueryOpts, out any) error {
	want, err := toMap(filter)
	if err != nil {
		return err
	}

	s.mu.RLock()
	var matched []map[string]any
	for _, raw := range s.data[collection] {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			s.mu.RUnlock()
			return err
		}
		if matchesFilter(doc, want) {
			matched = append(matched, doc)
		}
	}
	s.mu.RUnlock()

	if opts.SortBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessValue(matched[i][opts.SortBy], matched[j][opts.SortBy])
			if opts.Desc {
				return !less && !equalValue(matched[i][opts.SortBy], matched[j][opts.SortBy])
			}
			return less
		})
	}
	if opts.Limit > 0 && len(matched) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	raw, err := json.Marshal(matched)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (s *Memory) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	set, err := toMap(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.data[collection][key]
	if !ok {
		return &ErrNotFound{Collection: collection, Key: key}
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for k, v := range set {
		doc[k] = v
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.data[collection][key] = updated
	return nil
}

func (s *Memory) Close(ctx context.Context) error {
	return nil
}

// toMap normalizes any value to JSON types so filter values compare
// against stored documents regardless of Go type.
func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return m, nil
}

func matchesFilter(doc, want map[string]any) bool {
	for k, v := range want {
		if !equalValue(doc[k], v) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// lessValue orders JSON values: numbers numerically, everything else as
// strings. RFC 3339 timestamps sort correctly as strings.
func lessValue(a, b any) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}
