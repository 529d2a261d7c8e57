package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// reverseSep joins value and code in reverse index members. Values must not
// contain it.
const reverseSep = "\x00"

// Redis is a Backend. Keys live in three fixed namespaces under the prefix:
//
//	{prefix}:kind:{kind}  hash of code → value
//	{prefix}:rev:{kind}   sorted set of "value\x00code" members, all score 0
//	{prefix}:all          set of every known code
//
// Lexical ordering of the reverse set makes Code return the smallest code
// sharing a value, as the other backends do.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects using a redis:// URL.
func OpenRedis(ctx context.Context, dsn, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis lookup: %w", err)
	}
	return NewRedis(client, prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "refcodes"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) kindKey(kind string) string    { return r.prefix + ":kind:" + kind }
func (r *Redis) reverseKey(kind string) string { return r.prefix + ":rev:" + kind }
func (r *Redis) allKey() string                { return r.prefix + ":all" }

func reverseMember(value, code string) string { return value + reverseSep + code }

// Value returns the value of code within kind.
func (r *Redis) Value(ctx context.Context, kind, code string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.kindKey(kind), code).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get code %s: %w", code, err)
	}
	return v, true, nil
}

// IsValid reports whether code exists for any kind.
func (r *Redis) IsValid(ctx context.Context, code string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.allKey(), code).Result()
	if err != nil {
		return false, fmt.Errorf("check code: %w", err)
	}
	return ok, nil
}

// Code returns the smallest code whose value within kind equals value.
func (r *Redis) Code(ctx context.Context, kind, value string) (string, bool, error) {
	lo := value + reverseSep
	members, err := r.client.ZRangeByLex(ctx, r.reverseKey(kind), &redis.ZRangeBy{
		Min:   "[" + lo,
		Max:   "(" + value + "\x01",
		Count: 1,
	}).Result()
	if err != nil {
		return "", false, fmt.Errorf("find code: %w", err)
	}
	if len(members) == 0 {
		return "", false, nil
	}
	return strings.TrimPrefix(members[0], lo), true, nil
}

// Put writes entries in one MULTI/EXEC transaction. Within a batch the last
// entry for a (kind, code) pair wins, and reverse members of replaced values
// are removed.
func (r *Redis) Put(ctx context.Context, entries []Entry) error {
	latest := make(map[[2]string]int, len(entries))
	var final []Entry
	for _, e := range entries {
		if strings.Contains(e.Value, reverseSep) {
			return fmt.Errorf("value of %s/%s contains a NUL byte", e.Kind, e.Code)
		}
		k := [2]string{e.Kind, e.Code}
		if i, ok := latest[k]; ok {
			final[i] = e
			continue
		}
		latest[k] = len(final)
		final = append(final, e)
	}

	var stale []Entry
	for _, e := range final {
		old, ok, err := r.Value(ctx, e.Kind, e.Code)
		if err != nil {
			return err
		}
		if ok && old != e.Value {
			stale = append(stale, Entry{Kind: e.Kind, Code: e.Code, Value: old})
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, s := range stale {
			pipe.ZRem(ctx, r.reverseKey(s.Kind), reverseMember(s.Value, s.Code))
		}
		for _, e := range final {
			pipe.HSet(ctx, r.kindKey(e.Kind), e.Code, e.Value)
			pipe.ZAdd(ctx, r.reverseKey(e.Kind), redis.Z{Member: reverseMember(e.Value, e.Code)})
			pipe.SAdd(ctx, r.allKey(), e.Code)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write codes: %w", err)
	}
	return nil
}

// Close closes the client.
func (r *Redis) Close() error { return r.client.Close() }
