package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/folderstats"
)

const (
	// reportKeyPrefix is the key prefix for cached audit reports
	reportKeyPrefix = "scriptdesk:report:"

	// DefaultReportTTL bounds staleness when an invalidation is missed
	DefaultReportTTL = 10 * time.Minute
)

// ReportCache stores audit reports as JSON strings. Cache failures are logged
// and treated as misses; they never fail the caller.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewReportCache creates a report cache backed by client
func NewReportCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) librarySvc.ReportCache {
	if ttl <= 0 {
		ttl = DefaultReportTTL
	}
	return &ReportCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached report for a project
func (c *ReportCache) Get(ctx context.Context, projectID string) (*folderstats.Report, bool) {
	val, err := c.client.Get(ctx, reportKeyPrefix+projectID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("report cache get error", "project_id", projectID, "error", err)
		return nil, false
	}

	var report folderstats.Report
	if err := json.Unmarshal(val, &report); err != nil {
		c.logger.Warn("report cache entry corrupt", "project_id", projectID, "error", err)
		c.Invalidate(ctx, projectID)
		return nil, false
	}
	c.logger.Debug("report cache hit", "project_id", projectID)
	return &report, true
}

// Put stores a report with the configured TTL
func (c *ReportCache) Put(ctx context.Context, projectID string, report *folderstats.Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("report cache encode error", "project_id", projectID, "error", err)
		return
	}
	if err := c.client.Set(ctx, reportKeyPrefix+projectID, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache set error", "project_id", projectID, "error", err)
	}
}

// Invalidate removes the cached report for a project
func (c *ReportCache) Invalidate(ctx context.Context, projectID string) {
	if err := c.client.Del(ctx, reportKeyPrefix+projectID).Err(); err != nil {
		c.logger.Warn("report cache invalidate error", "project_id", projectID, "error", err)
		return
	}
	c.logger.Debug("report cache invalidated", "project_id", projectID)
}

// Noop is used when no Redis address is configured
type Noop struct{}

// NewNoop returns a cache that never stores anything
func NewNoop() librarySvc.ReportCache { return Noop{} }

func (Noop) Get(context.Context, string) (*folderstats.Report, bool) { return nil, false }
func (Noop) Put(context.Context, string, *folderstats.Report)        {}
func (Noop) Invalidate(context.Context, string)                      {}
