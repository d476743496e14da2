package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"credwallet/internal/credential/models"
	"credwallet/pkg/platform/sentinel"
)

const (
	credentialKeyPrefix = "credential:"
	threadKeyPrefix     = "credential_thread:"
	connectionKeyPrefix = "connection:"

	scanBatch = 100
)

// RedisStore persists entries in Redis as JSON, with a set per thread id
// indexing the records on that thread. Entries carry no TTL: declined
// snapshots written to record metadata must outlive the process.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func credentialKey(id string) string { return credentialKeyPrefix + id }

func threadKey(threadID string) string { return threadKeyPrefix + threadID }

func (s *RedisStore) Create(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	id := entry.Record.ID
	created, err := s.client.SetNX(ctx, credentialKey(id), data, 0).Result()
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	if !created {
		return fmt.Errorf("credential %s: %w", id, sentinel.ErrConflict)
	}
	if entry.Record.ThreadID != "" {
		if err := s.client.SAdd(ctx, threadKey(entry.Record.ThreadID), id).Err(); err != nil {
			return fmt.Errorf("index credential thread: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (Entry, error) {
	data, err := s.client.Get(ctx, credentialKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Entry{}, fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("find credential by id: %w", err)
	}
	return decodeEntry(data)
}

// ListAll scans every credential key. Entries that fail to decode are skipped.
func (s *RedisStore) ListAll(ctx context.Context) ([]Entry, error) {
	var out []Entry
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, credentialKeyPrefix+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("scan credentials: %w", err)
		}
		entries, err := s.getMany(ctx, keys)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)

		cursor = next
		if cursor == 0 {
			break
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *RedisStore) ListByThread(ctx context.Context, threadID string) ([]Entry, error) {
	ids, err := s.client.SMembers(ctx, threadKey(threadID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list credentials by thread: %w", err)
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = credentialKey(id)
	}
	out, err := s.getMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	sortEntries(out)
	return out, nil
}

func (s *RedisStore) getMany(ctx context.Context, keys []string) ([]Entry, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.Get(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	out := make([]Entry, 0, len(cmds))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			continue
		}
		e, err := decodeEntry(data)
		if err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Execute runs validate and mutate under WATCH on the credential key. A
// concurrent write aborts the transaction with redis.TxFailedErr.
func (s *RedisStore) Execute(ctx context.Context, id string, validate func(*Entry) error, mutate func(*Entry)) (Entry, error) {
	key := credentialKey(id)
	var result Entry

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("credential %s: %w", id, sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get credential for execute: %w", err)
		}

		e, err := decodeEntry(data)
		if err != nil {
			return err
		}
		if err := validate(&e); err != nil {
			return err
		}
		mutate(&e)

		newData, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal credential: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newData, 0)
			if e.Record.ThreadID != "" {
				pipe.SAdd(ctx, threadKey(e.Record.ThreadID), id)
			}
			return nil
		})
		if err != nil {
			return err
		}

		result = e
		return nil
	}, key)

	if err != nil {
		return Entry{}, err
	}
	return result, nil
}

func (s *RedisStore) SaveConnection(ctx context.Context, conn models.Connection) error {
	data, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("marshal connection: %w", err)
	}
	if err := s.client.Set(ctx, connectionKeyPrefix+conn.ID, data, 0).Err(); err != nil {
		return fmt.Errorf("save connection: %w", err)
	}
	return nil
}

func (s *RedisStore) FindConnection(ctx context.Context, id string) (models.Connection, error) {
	data, err := s.client.Get(ctx, connectionKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return models.Connection{}, fmt.Errorf("connection %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return models.Connection{}, fmt.Errorf("find connection: %w", err)
	}
	var conn models.Connection
	if err := json.Unmarshal([]byte(data), &conn); err != nil {
		return models.Connection{}, fmt.Errorf("unmarshal connection: %w", err)
	}
	return conn, nil
}

func decodeEntry(data string) (Entry, error) {
	var e Entry
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return Entry{}, fmt.Errorf("unmarshal credential: %w", err)
	}
	return e, nil
}
