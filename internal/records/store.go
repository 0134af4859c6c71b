// Package records owns the persistent state of the assistant: four
// append-ordered collections (events, todos, notes, contacts), each
// backed by one JSON file holding a single top-level array.
package records

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Collection file names under the data directory.
const (
	EventsFile   = "events.json"
	TodosFile    = "todos.json"
	NotesFile    = "notes.json"
	ContactsFile = "contacts.json"
)

// Store 单个集合的写穿缓存：内存中的有序序列 + 背后的 JSON 文件。
// 每次变更都把整个集合重写回文件。
// Store is a write-through cache over exactly one JSON file: an ordered
// in-memory sequence persisted in full after every mutation.
type Store[T any, PT interface {
	*T
	Record
}] struct {
	path string

	mu    sync.Mutex
	items []T
	now   func() time.Time
}

// Convenience instantiations, one per entity kind.
type (
	EventStore   = Store[Event, *Event]
	TodoStore    = Store[Todo, *Todo]
	NoteStore    = Store[Note, *Note]
	ContactStore = Store[Contact, *Contact]
)

// Open 读取集合文件；文件缺失视为空集合，文件损坏返回 ErrCorrupt。
// Open loads the backing file. A missing file starts an empty
// collection; an unparsable file wraps ErrCorrupt.
func Open[T any, PT interface {
	*T
	Record
}](path string) (*Store[T, PT], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store[T, PT]{path: path, items: []T{}, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, filepath.Base(path), err)
	}
	if s.items == nil {
		s.items = []T{}
	}
	return s, nil
}

func OpenEvents(path string) (*EventStore, error)     { return Open[Event, *Event](path) }
func OpenTodos(path string) (*TodoStore, error)       { return Open[Todo, *Todo](path) }
func OpenNotes(path string) (*NoteStore, error)       { return Open[Note, *Note](path) }
func OpenContacts(path string) (*ContactStore, error) { return Open[Contact, *Contact](path) }

// Stores bundles the four collections backing one data directory.
type Stores struct {
	Events   *EventStore
	Todos    *TodoStore
	Notes    *NoteStore
	Contacts *ContactStore
}

// OpenDir opens all four collections under dataDir.
func OpenDir(dataDir string) (*Stores, error) {
	events, err := OpenEvents(filepath.Join(dataDir, EventsFile))
	if err != nil {
		return nil, err
	}
	todos, err := OpenTodos(filepath.Join(dataDir, TodosFile))
	if err != nil {
		return nil, err
	}
	notes, err := OpenNotes(filepath.Join(dataDir, NotesFile))
	if err != nil {
		return nil, err
	}
	contacts, err := OpenContacts(filepath.Join(dataDir, ContactsFile))
	if err != nil {
		return nil, err
	}
	return &Stores{Events: events, Todos: todos, Notes: notes, Contacts: contacts}, nil
}

// Path returns the backing file path.
func (s *Store[T, PT]) Path() string { return s.path }

// Create 校验必填字段、分配递增 ID、追加并持久化。
// Create validates required fields, assigns id = max(existing)+1,
// appends, and persists.
func (s *Store[T, PT]) Create(item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	pt := PT(&item)
	if err := pt.Validate(); err != nil {
		return zero, err
	}
	pt.SetRecordID(s.nextID())
	pt.StampCreated(s.now())
	s.items = append(s.items, item)
	if err := s.persist(); err != nil {
		s.items = s.items[:len(s.items)-1]
		return zero, err
	}
	return item, nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (s *Store[T, PT]) Get(id int) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i := s.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return s.items[i], nil
}

// Update 对副本应用 mutate，重新校验后写回并持久化。ID 不可变。
// Update applies mutate to a copy of the record, re-validates, stores
// it, and persists. The record ID cannot be changed.
func (s *Store[T, PT]) Update(id int, mutate func(PT)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	i := s.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	updated := s.items[i]
	pt := PT(&updated)
	mutate(pt)
	pt.SetRecordID(id)
	if err := pt.Validate(); err != nil {
		return zero, err
	}
	pt.StampUpdated(s.now())
	prev := s.items[i]
	s.items[i] = updated
	if err := s.persist(); err != nil {
		s.items[i] = prev
		return zero, err
	}
	return updated, nil
}

// Delete removes the record with the given ID and persists.
// Remaining records keep their IDs and are never renumbered.
func (s *Store[T, PT]) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	removed := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	if err := s.persist(); err != nil {
		s.items = append(s.items[:i], append([]T{removed}, s.items[i:]...)...)
		return err
	}
	return nil
}

// List returns a snapshot of the collection in insertion order.
// Mutating the returned slice does not write through.
func (s *Store[T, PT]) List() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of records in the collection.
func (s *Store[T, PT]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ReplaceAll swaps the whole collection and persists. Used by the
// debug "clear" surface; regular mutations go through Create/Update/Delete.
func (s *Store[T, PT]) ReplaceAll(items []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items == nil {
		items = []T{}
	}
	prev := s.items
	s.items = items
	if err := s.persist(); err != nil {
		s.items = prev
		return err
	}
	return nil
}

func (s *Store[T, PT]) indexOf(id int) int {
	for i := range s.items {
		if PT(&s.items[i]).RecordID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, PT]) nextID() int {
	max := 0
	for i := range s.items {
		if id := PT(&s.items[i]).RecordID(); id > max {
			max = id
		}
	}
	return max + 1
}

// persist 全量重写集合文件（临时文件 + rename，避免写一半留下损坏文件）。
// persist rewrites the whole collection file via a temp file + rename
// so a crash mid-write never leaves a half-written file behind.
func (s *Store[T, PT]) persist() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(s.path), err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
