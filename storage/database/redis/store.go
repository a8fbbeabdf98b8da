package redisdb

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/VinayakSharmaa/ICS4U-25-26/core"
	"github.com/VinayakSharmaa/ICS4U-25-26/core/school"
)

// Store is a school.Store over Redis. Per kind, it keeps:
//
//	<prefix><kind>:<id>                  document body
//	<prefix><kind>:<id>:refs             hash of the document's refs
//	<prefix><kind>s                      sorted set of ids (score = id)
//	<prefix><kind>:<field>:<target>      sorted set of the ids referencing target
//	<prefix>counter:<kind>               id counter
//
// Redis has no rollback: Tx runs fn directly and guard checks are not atomic with the write.
// Each single write is atomic: Replace and Delete swap the ref index under WATCH.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var _ school.Store = (*Store)(nil) // interface compliance check

func Open(conf core.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
}

func NewStore(rdb *redis.Client, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) docKey(kind school.Kind, id int) string {
	return s.prefix + string(kind) + ":" + strconv.Itoa(id)
}

func (s *Store) refsKey(kind school.Kind, id int) string {
	return s.docKey(kind, id) + ":refs"
}

func (s *Store) indexKey(kind school.Kind) string {
	return s.prefix + string(kind) + "s"
}

func (s *Store) refIndexKey(kind school.Kind, field string, target int) string {
	return s.prefix + string(kind) + ":" + field + ":" + strconv.Itoa(target)
}

func (s *Store) counterKey(kind school.Kind) string {
	return s.prefix + "counter:" + string(kind)
}

func (s *Store) NextID(ctx context.Context, kind school.Kind) (int, error) {
	id, err := s.rdb.Incr(ctx, s.counterKey(kind)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "incrementing counter")
	}
	return int(id), nil
}

// fetch returns the documents at ids, in order, skipping ids whose body is gone.
func (s *Store) fetch(ctx context.Context, kind school.Kind, ids []string) ([]school.Document, error) {
	docs := make([]school.Document, 0, len(ids))
	if len(ids) == 0 {
		return docs, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.prefix+string(kind)+":"+id)
	}
	bodies, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "getting documents")
	}
	for i, body := range bodies {
		str, ok := body.(string)
		if !ok {
			continue
		}
		id, err := strconv.Atoi(ids[i])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing id %q", ids[i])
		}
		docs = append(docs, school.Document{ID: id, Body: []byte(str)})
	}
	return docs, nil
}

func (s *Store) List(ctx context.Context, kind school.Kind) ([]school.Document, error) {
	ids, err := s.rdb.ZRange(ctx, s.indexKey(kind), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing ids")
	}
	return s.fetch(ctx, kind, ids)
}

func (s *Store) Get(ctx context.Context, kind school.Kind, id int) (school.Document, error) {
	body, err := s.rdb.Get(ctx, s.docKey(kind, id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return school.Document{}, school.ErrNoDocument
		}
		return school.Document{}, errors.Wrap(err, "getting document")
	}
	return school.Document{ID: id, Body: body}, nil
}

func (s *Store) Exists(ctx context.Context, kind school.Kind, id int) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.docKey(kind, id)).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking document")
	}
	return n > 0, nil
}

// maxTxRetries bounds the optimistic retries of a write whose watched keys changed before EXEC.
const maxTxRetries = 100

// watch runs fn in a WATCH on keys, retrying while a concurrent write invalidates the transaction.
func (s *Store) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, fn, keys...)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return errors.Errorf("gave up after %d conflicting writes", maxTxRetries)
}

func (s *Store) oldRefs(ctx context.Context, c redis.Cmdable, kind school.Kind, id int) (map[string]int, error) {
	raw, err := c.HGetAll(ctx, s.refsKey(kind, id)).Result()
	if err != nil {
		return nil, errors.Wrap(err, "getting refs")
	}
	refs := make(map[string]int, len(raw))
	for field, target := range raw {
		if refs[field], err = strconv.Atoi(target); err != nil {
			return nil, errors.Wrapf(err, "parsing %s ref", field)
		}
	}
	return refs, nil
}

// queueWrite stores doc and swaps its ref index entries from old to doc.Refs.
func (s *Store) queueWrite(ctx context.Context, pipe redis.Pipeliner, kind school.Kind, doc school.Document, old map[string]int) {
	member := &redis.Z{Score: float64(doc.ID), Member: strconv.Itoa(doc.ID)}
	pipe.Set(ctx, s.docKey(kind, doc.ID), doc.Body, 0)
	pipe.ZAdd(ctx, s.indexKey(kind), member)

	for field, target := range old {
		pipe.ZRem(ctx, s.refIndexKey(kind, field, target), member.Member)
	}
	pipe.Del(ctx, s.refsKey(kind, doc.ID))
	if len(doc.Refs) > 0 {
		values := make([]interface{}, 0, 2*len(doc.Refs))
		for field, target := range doc.Refs {
			values = append(values, field, target)
			pipe.ZAdd(ctx, s.refIndexKey(kind, field, target), member)
		}
		pipe.HSet(ctx, s.refsKey(kind, doc.ID), values...)
	}
}

func (s *Store) Insert(ctx context.Context, kind school.Kind, doc school.Document) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueWrite(ctx, pipe, kind, doc, nil)
		return nil
	})
	return errors.Wrap(err, "inserting document")
}

// Replace reads the current refs and swaps them in one watched transaction,
// so concurrent writers to the same document cannot leave stale ref index entries.
func (s *Store) Replace(ctx context.Context, kind school.Kind, doc school.Document) error {
	docKey, refsKey := s.docKey(kind, doc.ID), s.refsKey(kind, doc.ID)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, docKey).Result()
		if err != nil {
			return errors.Wrap(err, "checking document")
		}
		if n == 0 {
			return school.ErrNoDocument
		}
		old, err := s.oldRefs(ctx, tx, kind, doc.ID)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queueWrite(ctx, pipe, kind, doc, old)
			return nil
		})
		return err
	}, docKey, refsKey)
	if err == school.ErrNoDocument {
		return err
	}
	return errors.Wrap(err, "replacing document")
}

func (s *Store) Delete(ctx context.Context, kind school.Kind, id int) error {
	docKey, refsKey := s.docKey(kind, id), s.refsKey(kind, id)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		old, err := s.oldRefs(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			member := strconv.Itoa(id)
			for field, target := range old {
				pipe.ZRem(ctx, s.refIndexKey(kind, field, target), member)
			}
			pipe.Del(ctx, docKey, refsKey)
			pipe.ZRem(ctx, s.indexKey(kind), member)
			return nil
		})
		return err
	}, docKey, refsKey)
	return errors.Wrap(err, "deleting document")
}

func (s *Store) FindByRef(ctx context.Context, kind school.Kind, field string, id int) ([]school.Document, error) {
	ids, err := s.rdb.ZRange(ctx, s.refIndexKey(kind, field, id), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing ids by ref")
	}
	return s.fetch(ctx, kind, ids)
}

func (s *Store) CountByRef(ctx context.Context, kind school.Kind, field string, id int) (int, error) {
	n, err := s.rdb.ZCard(ctx, s.refIndexKey(kind, field, id)).Result()
	if err != nil {
		return 0, errors.Wrap(err, "counting refs")
	}
	return int(n), nil
}

func (s *Store) Tx(_ context.Context, fn func(tx school.Store) error) error {
	return fn(s)
}

// NonTransactional reports that a failed Tx keeps the writes it made.
func (*Store) NonTransactional() bool { return true }

func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrap(s.rdb.Ping(ctx).Err(), "pinging redis")
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
