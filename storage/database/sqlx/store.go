package sqlxdb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

// Store is a school.Store over the `documents`, `doc_refs` and `counters` tables.
// Queries are written with `?` placeholders and rebound for the driver in use.
type Store struct {
	db  *sqlx.DB
	ext sqlx.ExtContext // db, or the open transaction
	tx  *sqlx.Tx
}

var _ school.Store = (*Store)(nil) // interface compliance check

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, ext: db}
}

type docRow struct {
	ID   int    `db:"id"`
	Body []byte `db:"body"`
}

func toDocuments(rows []docRow) []school.Document {
	docs := make([]school.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, school.Document{ID: row.ID, Body: row.Body})
	}
	return docs
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	res, err := s.ext.ExecContext(ctx, s.ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) NextID(ctx context.Context, kind school.Kind) (int, error) {
	const (
		insertCounter = `INSERT INTO counters (kind, seq) VALUES (?, 0) ON CONFLICT (kind) DO NOTHING`
		bumpCounter   = `UPDATE counters SET seq = seq + 1 WHERE kind = ? RETURNING seq`
	)
	if _, err := s.exec(ctx, insertCounter, string(kind)); err != nil {
		return 0, errors.Wrap(err, "inserting counter")
	}
	var seq int
	if err := sqlx.GetContext(ctx, s.ext, &seq, s.ext.Rebind(bumpCounter), string(kind)); err != nil {
		return 0, errors.Wrap(err, "incrementing counter")
	}
	return seq, nil
}

func (s *Store) List(ctx context.Context, kind school.Kind) ([]school.Document, error) {
	const q = `SELECT id, body FROM documents WHERE kind = ? ORDER BY id`
	var rows []docRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, s.ext.Rebind(q), string(kind)); err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}
	return toDocuments(rows), nil
}

func (s *Store) Get(ctx context.Context, kind school.Kind, id int) (school.Document, error) {
	const q = `SELECT id, body FROM documents WHERE kind = ? AND id = ?`
	var rows []docRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, s.ext.Rebind(q), string(kind), id); err != nil {
		return school.Document{}, errors.Wrap(err, "selecting document")
	}
	if len(rows) == 0 {
		return school.Document{}, school.ErrNoDocument
	}
	return school.Document{ID: rows[0].ID, Body: rows[0].Body}, nil
}

func (s *Store) Exists(ctx context.Context, kind school.Kind, id int) (bool, error) {
	const q = `SELECT COUNT(*) FROM documents WHERE kind = ? AND id = ?`
	var n int
	if err := sqlx.GetContext(ctx, s.ext, &n, s.ext.Rebind(q), string(kind), id); err != nil {
		return false, errors.Wrap(err, "counting documents")
	}
	return n > 0, nil
}

func (s *Store) insertRefs(ctx context.Context, kind school.Kind, doc school.Document) error {
	const q = `INSERT INTO doc_refs (kind, id, field, target) VALUES (?, ?, ?, ?)`
	for field, target := range doc.Refs {
		if _, err := s.exec(ctx, q, string(kind), doc.ID, field, target); err != nil {
			return errors.Wrapf(err, "inserting %s ref", field)
		}
	}
	return nil
}

func (s *Store) deleteRefs(ctx context.Context, kind school.Kind, id int) error {
	const q = `DELETE FROM doc_refs WHERE kind = ? AND id = ?`
	_, err := s.exec(ctx, q, string(kind), id)
	return errors.Wrap(err, "deleting refs")
}

// inTx runs fn on a store bound to a transaction, reusing the open one if any.
// Writes spanning documents and doc_refs go through it so concurrent writers never interleave them.
func (s *Store) inTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.Tx(ctx, func(tx school.Store) error { return fn(tx.(*Store)) })
}

func (s *Store) Insert(ctx context.Context, kind school.Kind, doc school.Document) error {
	return s.inTx(ctx, func(tx *Store) error { return tx.insert(ctx, kind, doc) })
}

func (s *Store) Replace(ctx context.Context, kind school.Kind, doc school.Document) error {
	return s.inTx(ctx, func(tx *Store) error { return tx.replace(ctx, kind, doc) })
}

func (s *Store) Delete(ctx context.Context, kind school.Kind, id int) error {
	return s.inTx(ctx, func(tx *Store) error { return tx.delete(ctx, kind, id) })
}

func (s *Store) insert(ctx context.Context, kind school.Kind, doc school.Document) error {
	const q = `INSERT INTO documents (kind, id, body) VALUES (?, ?, ?)`
	if _, err := s.exec(ctx, q, string(kind), doc.ID, string(doc.Body)); err != nil {
		return errors.Wrap(err, "inserting document")
	}
	return s.insertRefs(ctx, kind, doc)
}

func (s *Store) replace(ctx context.Context, kind school.Kind, doc school.Document) error {
	const q = `UPDATE documents SET body = ? WHERE kind = ? AND id = ?`
	n, err := s.exec(ctx, q, string(doc.Body), string(kind), doc.ID)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	switch {
	case n == 0:
		return school.ErrNoDocument
	case n > 1:
		return core.NewShutdownError(fmt.Sprintf("integrity issue: %d %s documents updated with id %d", n, kind, doc.ID))
	}
	if err = s.deleteRefs(ctx, kind, doc.ID); err != nil {
		return err
	}
	return s.insertRefs(ctx, kind, doc)
}

func (s *Store) delete(ctx context.Context, kind school.Kind, id int) error {
	if err := s.deleteRefs(ctx, kind, id); err != nil {
		return err
	}
	const q = `DELETE FROM documents WHERE kind = ? AND id = ?`
	n, err := s.exec(ctx, q, string(kind), id)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if n > 1 {
		return core.NewShutdownError(fmt.Sprintf("integrity issue: %d %s documents deleted with id %d", n, kind, id))
	}
	return nil
}

func (s *Store) FindByRef(ctx context.Context, kind school.Kind, field string, id int) ([]school.Document, error) {
	const q = `
		SELECT d.id, d.body
		FROM documents d
		JOIN doc_refs r ON r.kind = d.kind AND r.id = d.id
		WHERE r.kind = ? AND r.field = ? AND r.target = ?
		ORDER BY d.id`
	var rows []docRow
	if err := sqlx.SelectContext(ctx, s.ext, &rows, s.ext.Rebind(q), string(kind), field, id); err != nil {
		return nil, errors.Wrap(err, "selecting documents by ref")
	}
	return toDocuments(rows), nil
}

func (s *Store) CountByRef(ctx context.Context, kind school.Kind, field string, id int) (int, error) {
	const q = `SELECT COUNT(*) FROM doc_refs WHERE kind = ? AND field = ? AND target = ?`
	var n int
	if err := sqlx.GetContext(ctx, s.ext, &n, s.ext.Rebind(q), string(kind), field, id); err != nil {
		return 0, errors.Wrap(err, "counting refs")
	}
	return n, nil
}

// Tx runs fn in a database transaction, committed only if fn succeeds.
// Calls made within fn reuse the open transaction.
func (s *Store) Tx(ctx context.Context, fn func(tx school.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(&Store{db: s.db, ext: tx, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
