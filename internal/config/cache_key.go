package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserDecisionsKey returns the Redis set key holding every institution id the
// user has already swiped on (liked or passed).
func (r *CacheKeyStruct) UserDecisionsKey(userID int64) string {
	return fmt.Sprintf("user:%d:decisions", userID)
}

// UserLikesKey returns the Redis set key holding the institution ids the user
// has matched with.
func (r *CacheKeyStruct) UserLikesKey(userID int64) string {
	return fmt.Sprintf("user:%d:likes", userID)
}

// ReportKey returns the cache key for an analytics report at a given limit.
func (r *CacheKeyStruct) ReportKey(name string, limit int) string {
	return fmt.Sprintf("report:%s:%d", name, limit)
}

var CacheKey = NewCacheKeyStruct()
