package database

import (
	"encoding/json"
	"fmt"

	"github.com/vampire-games/vampired/internal/cache"
	storage "github.com/vampire-games/vampired/internal/database"
	"github.com/vampire-games/vampired/internal/database/session/model"
	bolt "go.etcd.io/bbolt"
)

var NotFoundErr = fmt.Errorf("not found")

const (
	bucket      = "sessions"
	tokenBucket = "sessionTokens"
)

func New(db *storage.DB, cache cache.Cache) *DB {
	return &DB{sDB: db, cache: cache}
}

// DB stores player sessions keyed by id with a token index bucket. The
// cache fronts token lookups, which is the hot path (every authenticated
// request).
type DB struct {
	sDB *storage.DB

	cache cache.Cache
}

func (db *DB) Fetch(id string) (model.Session, error) {
	var s model.Session
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return NotFoundErr
		}

		bytes := b.Get([]byte(id))
		if len(bytes) == 0 {
			return NotFoundErr
		}

		if err := json.Unmarshal(bytes, &s); err != nil {
			return fmt.Errorf("unmarshal: %v", err)
		}

		return nil
	}); err != nil {
		return s, fmt.Errorf("view transaction error: %w", err)
	}

	return s, nil
}

func (db *DB) FetchByToken(token string) (model.Session, error) {
	if db.cache != nil {
		if v, ok := db.cache.Get(token); ok {
			return v.(model.Session), nil
		}
	}

	var s model.Session
	if err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		tb := tx.Bucket([]byte(tokenBucket))
		if tb == nil {
			return NotFoundErr
		}

		id := tb.Get([]byte(token))
		if len(id) == 0 {
			return NotFoundErr
		}

		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return NotFoundErr
		}

		bytes := b.Get(id)
		if len(bytes) == 0 {
			return NotFoundErr
		}

		if err := json.Unmarshal(bytes, &s); err != nil {
			return fmt.Errorf("unmarshal: %v", err)
		}

		return nil
	}); err != nil {
		return s, fmt.Errorf("view transaction error: %w", err)
	}

	if db.cache != nil {
		db.cache.Add(token, s)
	}

	return s, nil
}

func (db *DB) Store(s model.Session) error {
	bytes, err := json.Marshal(s)
	if err != nil {
		return err
	}

	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}

		tb, err := tx.CreateBucketIfNotExists([]byte(tokenBucket))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}

		if err := b.Put([]byte(s.ID), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}

		if err := tb.Put([]byte(s.Token), []byte(s.ID)); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	if db.cache != nil {
		db.cache.Add(s.Token, s)
	}

	return nil
}

func (db *DB) Remove(id string) error {
	if err := db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}

		bytes := b.Get([]byte(id))
		if len(bytes) == 0 {
			return nil
		}

		var s model.Session
		if err := json.Unmarshal(bytes, &s); err != nil {
			return fmt.Errorf("unmarshal: %v", err)
		}

		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("delete from bucket error: %w", err)
		}

		if tb := tx.Bucket([]byte(tokenBucket)); tb != nil {
			if err := tb.Delete([]byte(s.Token)); err != nil {
				return fmt.Errorf("delete from bucket error: %w", err)
			}
		}

		if db.cache != nil {
			db.cache.Delete(s.Token)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("update transaction error: %v", err)
	}

	return nil
}
