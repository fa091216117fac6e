package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	AgencyKeyPrefix    = "agency:%s"
	ClaimPageKeyPrefix = "claims:page:%s"
)

const (
	UserTTL      = 5 * time.Minute
	AgencyTTL    = 10 * time.Minute
	ClaimPageTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func AgencyKey(slug string) string {
	return fmt.Sprintf(AgencyKeyPrefix, slug)
}

// ClaimPageKey builds the cache key for one page of the admin claims list.
// sig encodes the filter and page parameters.
func ClaimPageKey(sig string) string {
	return fmt.Sprintf(ClaimPageKeyPrefix, sig)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateAgency(ctx context.Context, slug string) {
	Invalidate(ctx, AgencyKey(slug))
}
