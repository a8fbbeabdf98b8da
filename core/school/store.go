package school

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
)

// ErrNoDocument is returned by a Store when no document exists at the requested id.
var ErrNoDocument = errors.New("document not found")

// Document is the stored form of an entity: its JSON body plus the foreign keys it holds.
// Stores index Refs on write so that dependents can be found without decoding bodies;
// they need not return Refs on read.
type Document struct {
	ID   int
	Refs map[string]int
	Body []byte
}

// Store is a schemaless document store with one collection per Kind.
type Store interface {
	// NextID atomically increments the counter of kind and returns the new value.
	NextID(ctx context.Context, kind Kind) (int, error)
	// List returns every document of kind ordered by ID ascending.
	List(ctx context.Context, kind Kind) ([]Document, error)
	Get(ctx context.Context, kind Kind, id int) (Document, error)
	Exists(ctx context.Context, kind Kind, id int) (bool, error)
	Insert(ctx context.Context, kind Kind, doc Document) error
	// Replace overwrites an existing document; ErrNoDocument if there is none.
	Replace(ctx context.Context, kind Kind, doc Document) error
	Delete(ctx context.Context, kind Kind, id int) error
	// FindByRef returns the documents of kind whose ref `field` equals id, ordered by ID ascending.
	FindByRef(ctx context.Context, kind Kind, field string, id int) ([]Document, error)
	CountByRef(ctx context.Context, kind Kind, field string, id int) (int, error)
	// Tx runs fn as a single unit of work against the Store it is given.
	// Backends without transactions run fn directly.
	Tx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}

type entity interface {
	refs() map[string]int
}

func encode(id int, ent entity) (Document, error) {
	body, err := json.Marshal(ent)
	if err != nil {
		return Document{}, errors.Wrap(err, "encoding document")
	}
	return Document{ID: id, Refs: ent.refs(), Body: body}, nil
}

func decode[T any](doc Document) (T, error) {
	var v T
	if err := json.Unmarshal(doc.Body, &v); err != nil {
		return v, errors.Wrapf(err, "decoding document %d", doc.ID)
	}
	return v, nil
}

func decodeAll[T any](docs []Document) ([]T, error) {
	ents := make([]T, 0, len(docs))
	for _, doc := range docs {
		v, err := decode[T](doc)
		if err != nil {
			return nil, err
		}
		ents = append(ents, v)
	}
	return ents, nil
}

func listEntities[T any](ctx context.Context, st Store, kind Kind) ([]T, error) {
	docs, err := st.List(ctx, kind)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %ss", kind)
	}
	return decodeAll[T](docs)
}

// getEntity maps ErrNoDocument to a *core.NotFoundError.
func getEntity[T any](ctx context.Context, st Store, kind Kind, id int) (T, error) {
	doc, err := st.Get(ctx, kind, id)
	if err != nil {
		var zero T
		if errors.Cause(err) == ErrNoDocument {
			return zero, core.NewNotFoundError(string(kind))
		}
		return zero, errors.Wrapf(err, "getting %s", kind)
	}
	return decode[T](doc)
}

func findEntities[T any](ctx context.Context, st Store, kind Kind, field string, id int) ([]T, error) {
	docs, err := st.FindByRef(ctx, kind, field, id)
	if err != nil {
		return nil, errors.Wrapf(err, "finding %ss by %s", kind, field)
	}
	return decodeAll[T](docs)
}

func insertEntity(ctx context.Context, st Store, kind Kind, id int, ent entity) error {
	doc, err := encode(id, ent)
	if err != nil {
		return err
	}
	return errors.Wrapf(st.Insert(ctx, kind, doc), "inserting %s", kind)
}

func replaceEntity(ctx context.Context, st Store, kind Kind, id int, ent entity) error {
	doc, err := encode(id, ent)
	if err != nil {
		return err
	}
	if err = st.Replace(ctx, kind, doc); err != nil {
		if errors.Cause(err) == ErrNoDocument {
			return core.NewNotFoundError(string(kind))
		}
		return errors.Wrapf(err, "replacing %s", kind)
	}
	return nil
}

// deleteEntity deletes the record of kind at id once the Guard confirms nothing depends on it.
func deleteEntity[T any](ctx context.Context, st Store, kind Kind, id int) (T, error) {
	var zero T
	v, err := getEntity[T](ctx, st, kind, id)
	if err != nil {
		return zero, err
	}
	if err = NewGuard(st).CheckNoDependents(ctx, kind, id); err != nil {
		return zero, err
	}
	if err = st.Delete(ctx, kind, id); err != nil {
		return zero, errors.Wrapf(err, "deleting %s", kind)
	}
	return v, nil
}
