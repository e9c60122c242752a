package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/redis/go-redis/v9"
)

// Aggregate names double as cache key segments.
const (
	AggTaskStats     = "task-stats"
	AggProgress      = "progress"
	AggUpcomingTasks = "upcoming-tasks"
	AggCalendarTasks = "calendar-tasks"
)

var aggregates = []string{AggTaskStats, AggProgress, AggUpcomingTasks, AggCalendarTasks}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DashboardCache is a read-through cache over the dashboard aggregate
// queries, keyed per user and aggregate. A nil *DashboardCache is a
// valid no-op cache, so callers never branch on whether redis is
// configured. Redis failures degrade to a miss; they are never allowed
// to fail a request.
type DashboardCache struct {
	rdb  *redis.Client
	ttl  time.Duration
	prom *observability.Prom
}

func New(cfg Config, prom *observability.Prom) *DashboardCache {
	if cfg.Addr == "" {
		return nil
	}

	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &DashboardCache{
		rdb:  rdb,
		ttl:  cfg.TTL,
		prom: prom,
	}
}

func (c *DashboardCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *DashboardCache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func key(aggregate string, userID int64) string {
	return "dashboard:" + aggregate + ":" + strconv.FormatInt(userID, 10)
}

func (c *DashboardCache) lookup(aggregate, outcome string) {
	if c.prom != nil {
		c.prom.CacheLookups.WithLabelValues(aggregate, outcome).Inc()
	}
}

// Get unmarshals the cached aggregate into out and reports whether the
// key was present.
func (c *DashboardCache) Get(ctx context.Context, aggregate string, userID int64, out interface{}) bool {
	if c == nil {
		return false
	}

	raw, err := c.rdb.Get(ctx, key(aggregate, userID)).Bytes()

	if err != nil {
		if err == redis.Nil {
			c.lookup(aggregate, "miss")
		} else {
			c.lookup(aggregate, "error")
		}
		return false
	}

	err = json.Unmarshal(raw, out)

	if err != nil {
		c.lookup(aggregate, "error")
		return false
	}

	c.lookup(aggregate, "hit")
	return true
}

func (c *DashboardCache) Set(ctx context.Context, aggregate string, userID int64, val interface{}) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(val)

	if err != nil {
		return
	}

	// best effort
	_ = c.rdb.Set(ctx, key(aggregate, userID), raw, c.ttl).Err()
}

// Invalidate drops every cached aggregate for the user. Called on each
// project/task mutation so dashboards never serve stale counts beyond
// the TTL.
func (c *DashboardCache) Invalidate(ctx context.Context, userID int64) {
	if c == nil {
		return
	}

	keys := make([]string, 0, len(aggregates))

	for _, agg := range aggregates {
		keys = append(keys, key(agg, userID))
	}

	_ = c.rdb.Del(ctx, keys...).Err()
}
