// Package cache stores Job Board lookups, such as a job's required-question
// schema, between CLI runs.
//
// Two backends exist: JSON files under the user cache directory (the default)
// and Redis, selected with GREENHOUSE_REDIS_URL. Entries expire after
// DefaultTTL. Set GREENHOUSE_NO_CACHE=1 to bypass caching.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"strings"
	"time"
)

const DefaultTTL = 10 * time.Minute

// Cache is a keyed store of JSON values. Get reports a miss for absent,
// expired or undecodable entries.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Put(ctx context.Context, key string, value any) error
	Clear(ctx context.Context) error
}

// Disabled reports whether caching is turned off by environment.
func Disabled() bool {
	return os.Getenv("GREENHOUSE_NO_CACHE") != ""
}

// Namespace derives a short stable scope from the API root a cache serves,
// so that boards and environments never share entries.
func Namespace(scope string) string {
	hash := sha1.Sum([]byte(scope))
	return hex.EncodeToString(hash[:6])
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return "cache"
	}
	r := strings.NewReplacer("/", "-", "\\", "-", "_", "-", ":", "-")
	return r.Replace(key)
}
