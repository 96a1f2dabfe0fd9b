package workload

import (
	"context"
	"errors"
	"github.com/redis/go-redis/v9"
	"time"
)

// redisDB maps the benchmark operations onto redis hashes, one hash per record.
// It is used to run the same workload against a redis cluster for comparison.
type redisDB struct {
	client  redis.UniversalClient
	timeout time.Duration
}

// NewRedisClient creates a client for the given addresses. More than one
// address results in a cluster client.
func NewRedisClient(addrs []string, timeout time.Duration) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        addrs,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

// NewRedisDB creates a binding for a redis client, every operation is bounded by timeout
func NewRedisDB(client redis.UniversalClient, timeout time.Duration) DB {
	return &redisDB{
		client:  client,
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see workload.DB)
// --------------------------------------------------------------------------

func (db *redisDB) Read(key string) (Record, Status) {
	ctx, cancel := db.context()
	defer cancel()

	fields, err := db.client.HGetAll(ctx, key).Result()
	if err != nil {
		Logger.Warningf("Error reading key %s: %v", key, err)
		return nil, StatusError
	}
	if len(fields) == 0 {
		return nil, StatusNotFound
	}

	record := make(Record, len(fields))
	for name, value := range fields {
		record[name] = []byte(value)
	}
	return record, StatusOK
}

func (db *redisDB) Insert(key string, values Record) Status {
	ctx, cancel := db.context()
	defer cancel()

	if len(values) == 0 {
		values = Record{ValueField: []byte{}}
	}
	fields := make(map[string]interface{}, len(values))
	for name, value := range values {
		fields[name] = value
	}

	if err := db.client.HSet(ctx, key, fields).Err(); err != nil {
		Logger.Warningf("Error inserting key %s: %v", key, err)
		return StatusError
	}
	return StatusOK
}

// Update overwrites the given fields, HSET merges them into the hash
func (db *redisDB) Update(key string, values Record) Status {
	return db.Insert(key, values)
}

func (db *redisDB) Scan(string, int) ([]Record, Status) {
	return nil, StatusNotImplemented
}

func (db *redisDB) Delete(key string) Status {
	ctx, cancel := db.context()
	defer cancel()

	n, err := db.client.Del(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		Logger.Warningf("Error deleting key %s: %v", key, err)
		return StatusError
	}
	if n == 0 {
		return StatusNotFound
	}
	return StatusOK
}

func (db *redisDB) Cleanup() error {
	return db.client.Close()
}

func (db *redisDB) context() (context.Context, context.CancelFunc) {
	if db.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), db.timeout)
}
