package kvstore

import (
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

// Value framing: 8-byte big-endian expiry (unix seconds, 0 = no expiry)
// followed by the payload.
const expiryHeaderLen = 8

// PebbleStore implements Store on top of a Pebble database.
type PebbleStore struct {
	db  *pebble.DB
	now func() time.Time
}

// OpenPebble creates or opens a Pebble database at dir.
func OpenPebble(dir string) (*PebbleStore, error) {
	if dir == "" {
		return nil, errors.New("kvstore: data dir is required")
	}
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &PebbleStore{db: db, now: time.Now}, nil
}

var _ Store = (*PebbleStore)(nil)

func (s *PebbleStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PebbleStore) List(ctx context.Context, prefix, cursor string, limit int) ([]string, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if limit <= 0 {
		limit = 1000
	}

	lower := []byte(prefix)
	if cursor != "" {
		// Resume strictly after the cursor key.
		lower = append([]byte(cursor), 0x00)
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: prefixSuccessor([]byte(prefix)),
	})
	if err != nil {
		return nil, "", err
	}
	defer iter.Close()

	keys := make([]string, 0, limit)
	for iter.First(); iter.Valid() && len(keys) < limit; iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		return nil, "", err
	}

	// A full page may have more behind it; hand back the last key as cursor.
	// The next call either finds more keys or an empty page ends the loop.
	next := ""
	if len(keys) == limit && iter.Valid() {
		next = keys[len(keys)-1]
	}
	return keys, next, nil
}

func (s *PebbleStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	val, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	if len(val) < expiryHeaderLen {
		return nil, ErrNotFound
	}
	expiry := binary.BigEndian.Uint64(val[:expiryHeaderLen])
	if expiry != 0 && int64(expiry) <= s.now().Unix() {
		return nil, ErrNotFound
	}
	return append([]byte(nil), val[expiryHeaderLen:]...), nil
}

func (s *PebbleStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var expiry uint64
	if ttl > 0 {
		expiry = uint64(s.now().Add(ttl).Unix())
	}
	buf := make([]byte, expiryHeaderLen+len(value))
	binary.BigEndian.PutUint64(buf[:expiryHeaderLen], expiry)
	copy(buf[expiryHeaderLen:], value)

	return s.db.Set([]byte(key), buf, pebble.Sync)
}

func (s *PebbleStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Delete([]byte(key), pebble.Sync)
}

// prefixSuccessor returns the smallest key greater than every key with the
// given prefix, for use as an exclusive iteration upper bound.
func prefixSuccessor(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil // prefix is all 0xff; no upper bound
}
