package source

import (
	"context"
	"time"

	"github.com/mpapenbr/racepace/log"
	"github.com/mpapenbr/racepace/pkg/model"
	"github.com/mpapenbr/racepace/pkg/utils/cache"
	"github.com/mpapenbr/racepace/pkg/utils/cache/loadercache"
)

// CachedLoader keeps loaded session bundles for a while.
type CachedLoader struct {
	c cache.Cache[int, model.SessionData]
}

func NewCachedLoader(src DataSource, expiration time.Duration, l *log.Logger) *CachedLoader {
	if l == nil {
		l = log.Default().Named("cache")
	}
	return &CachedLoader{
		c: loadercache.New(
			loadercache.WithExpiration[int, model.SessionData](expiration),
			loadercache.WithLogger[int, model.SessionData](l),
			loadercache.WithLoader[int, model.SessionData](func(ctx context.Context, key int) (*model.SessionData, error) {
				return LoadBundle(ctx, src, key)
			}),
		),
	}
}

func (c *CachedLoader) Load(ctx context.Context, sessionKey int) (*model.SessionData, error) {
	return c.c.Get(ctx, sessionKey)
}

func (c *CachedLoader) Invalidate(ctx context.Context, sessionKey int) {
	c.c.Invalidate(ctx, sessionKey)
}
