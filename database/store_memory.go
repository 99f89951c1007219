package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryTxKey struct{}

// MemoryStore is an in-process Store for local development and tests.
// Documents are kept as their JSON form, so models are mapped through their
// json tags. Transactions are serialized and rolled back on error.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data map[string]map[string]map[string]any
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]map[string]any)}
}

func inMemoryTx(ctx context.Context) bool {
	return ctx.Value(memoryTxKey{}) != nil
}

// exclusive serializes writes issued outside a transaction with running
// transactions so a rollback cannot discard them.
func (s *MemoryStore) exclusive(ctx context.Context) func() {
	if inMemoryTx(ctx) {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

func (s *MemoryStore) Get(_ context.Context, collection, id string, dst any) error {
	s.mu.RLock()
	doc, ok := s.data[collection][id]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return memoryDocument{fields: doc}.DataTo(dst)
}

func (s *MemoryStore) Create(ctx context.Context, collection, id string, doc any) error {
	defer s.exclusive(ctx)()

	fields, err := toMemoryMap(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[collection][id]; exists {
		return ErrAlreadyExists
	}
	s.collection(collection)[id] = fields
	return nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, doc any) error {
	defer s.exclusive(ctx)()

	fields, err := toMemoryMap(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	s.collection(collection)[id] = fields
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	defer s.exclusive(ctx)()

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	for path, value := range fields {
		v, err := toMemoryValue(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s on %s/%s: %w", path, collection, id, err)
		}
		setPath(doc, path, v)
	}
	return nil
}

func (s *MemoryStore) Find(_ context.Context, collection string, q Query) ([]Document, error) {
	filters := make([]Filter, len(q.Filters))
	for i, f := range q.Filters {
		v, err := toMemoryValue(f.Value)
		if err != nil {
			return nil, err
		}
		filters[i] = Filter{Field: f.Field, Op: f.Op, Value: v}
	}

	s.mu.RLock()
	var matched []map[string]any
	for _, doc := range s.data[collection] {
		ok := true
		for _, f := range filters {
			if !matches(getPath(doc, f.Field), f.Op, f.Value) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, deepCopy(doc).(map[string]any))
		}
	}
	s.mu.RUnlock()

	field, desc := q.OrderBy, false
	if strings.HasPrefix(field, "-") {
		field, desc = field[1:], true
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if field != "" {
			if c := compare(getPath(matched[i], field), getPath(matched[j], field)); c != 0 {
				return (c < 0) != desc
			}
		}
		return fmt.Sprint(matched[i]["id"]) < fmt.Sprint(matched[j]["id"])
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	docs := make([]Document, 0, len(matched))
	for _, m := range matched {
		docs = append(docs, memoryDocument{fields: m})
	}
	return docs, nil
}

func (s *MemoryStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inMemoryTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := deepCopy(s.data).(map[string]map[string]map[string]any)
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, memoryTxKey{}, true)); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error  { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

// collection must be called with mu held for writing.
func (s *MemoryStore) collection(name string) map[string]map[string]any {
	c, ok := s.data[name]
	if !ok {
		c = make(map[string]map[string]any)
		s.data[name] = c
	}
	return c
}

type memoryDocument struct {
	fields map[string]any
}

func (d memoryDocument) DataTo(dst any) error {
	b, err := json.Marshal(d.fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

func toMemoryMap(doc any) (map[string]any, error) {
	v, err := toMemoryValue(doc)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document must encode to an object, got %T", v)
	}
	return m, nil
}

func toMemoryValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func getPath(doc map[string]any, path string) any {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func setPath(doc map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func matches(field any, op Op, value any) bool {
	if op == OpEqual {
		return compare(field, value) == 0 && sameKind(field, value)
	}
	if field == nil || !sameKind(field, value) {
		return false
	}
	c := compare(field, value)
	switch op {
	case OpLess:
		return c < 0
	case OpLessEqual:
		return c <= 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	}
	return false
}

func sameKind(a, b any) bool {
	return fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

// compare orders JSON values: numbers numerically, RFC 3339 timestamps
// chronologically, everything else by its string form.
func compare(a, b any) int {
	if an, ok := a.(json.Number); ok {
		if bn, ok := b.(json.Number); ok {
			af, _ := an.Float64()
			bf, _ := bn.Float64()
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			}
			return 0
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			at, aerr := time.Parse(time.RFC3339Nano, as)
			bt, berr := time.Parse(time.RFC3339Nano, bs)
			if aerr == nil && berr == nil {
				return at.Compare(bt)
			}
			return strings.Compare(as, bs)
		}
	}
	if a == nil && b == nil {
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]map[string]map[string]any:
		out := make(map[string]map[string]map[string]any, len(t))
		for k, c := range t {
			out[k] = deepCopy(c).(map[string]map[string]any)
		}
		return out
	case map[string]map[string]any:
		out := make(map[string]map[string]any, len(t))
		for k, d := range t {
			out[k] = deepCopy(d).(map[string]any)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	}
	return v
}
