package dummydb

import (
	"context"
	"sort"
	"sync"

	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

type (
	// DB is an in-memory school.Store. Documents do not survive a restart.
	DB struct {
		txMu sync.Mutex // serializes Tx

		mu       sync.RWMutex
		tables   map[school.Kind]table
		counters map[school.Kind]int
	}

	table map[int]school.Document
)

var _ school.Store = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{
		tables:   make(map[school.Kind]table),
		counters: make(map[school.Kind]int),
	}
}

func copyDoc(doc school.Document) school.Document {
	cp := school.Document{ID: doc.ID, Body: append([]byte(nil), doc.Body...)}
	if doc.Refs != nil {
		cp.Refs = make(map[string]int, len(doc.Refs))
		for k, v := range doc.Refs {
			cp.Refs[k] = v
		}
	}
	return cp
}

func sortByID(docs []school.Document) []school.Document {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

func (db *DB) NextID(_ context.Context, kind school.Kind) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.counters[kind]++
	return db.counters[kind], nil
}

func (db *DB) List(_ context.Context, kind school.Kind) ([]school.Document, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	docs := make([]school.Document, 0, len(db.tables[kind]))
	for _, doc := range db.tables[kind] {
		docs = append(docs, copyDoc(doc))
	}
	return sortByID(docs), nil
}

func (db *DB) Get(_ context.Context, kind school.Kind, id int) (school.Document, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if doc, ok := db.tables[kind][id]; ok {
		return copyDoc(doc), nil
	}
	return school.Document{}, school.ErrNoDocument
}

func (db *DB) Exists(_ context.Context, kind school.Kind, id int) (bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	_, ok := db.tables[kind][id]
	return ok, nil
}

func (db *DB) Insert(_ context.Context, kind school.Kind, doc school.Document) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tbl, ok := db.tables[kind]
	if !ok {
		tbl = make(table)
		db.tables[kind] = tbl
	}
	tbl[doc.ID] = copyDoc(doc)
	return nil
}

func (db *DB) Replace(_ context.Context, kind school.Kind, doc school.Document) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.tables[kind][doc.ID]; !ok {
		return school.ErrNoDocument
	}
	db.tables[kind][doc.ID] = copyDoc(doc)
	return nil
}

func (db *DB) Delete(_ context.Context, kind school.Kind, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.tables[kind], id)
	return nil
}

func (db *DB) FindByRef(_ context.Context, kind school.Kind, field string, id int) ([]school.Document, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var docs []school.Document
	for _, doc := range db.tables[kind] {
		if target, ok := doc.Refs[field]; ok && target == id {
			docs = append(docs, copyDoc(doc))
		}
	}
	return sortByID(docs), nil
}

func (db *DB) CountByRef(ctx context.Context, kind school.Kind, field string, id int) (int, error) {
	docs, err := db.FindByRef(ctx, kind, field, id)
	return len(docs), err
}

// Tx runs fn with exclusive write access. If fn fails, documents are restored to their prior state;
// counters are not, so ids handed out by a failed Tx are never reused.
func (db *DB) Tx(_ context.Context, fn func(tx school.Store) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snapshot := db.snapshot()
	if err := fn(db); err != nil {
		db.mu.Lock()
		db.tables = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *DB) snapshot() map[school.Kind]table {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tables := make(map[school.Kind]table, len(db.tables))
	for kind, tbl := range db.tables {
		cp := make(table, len(tbl))
		for id, doc := range tbl {
			cp[id] = doc
		}
		tables[kind] = cp
	}
	return tables
}

func (*DB) Ping(context.Context) error { return nil }
func (*DB) Close() error               { return nil }
