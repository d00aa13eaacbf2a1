package cache

import (
	"fmt"
	"time"
)

// PostKeyPrefix formats the key of a cached post detail body.
const PostKeyPrefix = "post:%d"

// PostTTL bounds how long a post body may be served from cache.
const PostTTL = 30 * time.Minute

// PostKey is the cache key of a post detail body.
func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// PostKeyPattern matches every cached post detail body.
const PostKeyPattern = "post:*"
