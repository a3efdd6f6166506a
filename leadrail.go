/*
Copyright 2025 Leadrail Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package leadrail

import (
	"context"
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/leadrail/leadrail/config"
	"github.com/leadrail/leadrail/database"
	"github.com/leadrail/leadrail/ghl"
	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/internal/cache"
	redis_db "github.com/leadrail/leadrail/internal/redis-db"
	"github.com/leadrail/leadrail/model"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// Leadrail is the outreach engine: it owns the durable queue, the CRM client
// and the task queue that drives cycles and repair passes.
type Leadrail struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	tokens     *ghl.TokenManager
	crm        *ghl.Client
	cache      cache.Cache
}

// NewLeadrail initializes a new engine instance from the loaded configuration
// and the provided datasource.
func NewLeadrail(db database.IDataSource) (*Leadrail, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient, err := redis_db.NewRedisClient(configuration.Redis.Dns)
	if err != nil {
		return nil, err
	}
	cacheInstance, err := cache.NewCache()
	if err != nil {
		return nil, err
	}

	newQueue := NewQueue(configuration)
	tokens := ghl.NewTokenManager(db, cacheInstance, redisClient.Client())
	crm := ghl.NewClient(tokens)

	return &Leadrail{
		queue:      newQueue,
		redis:      redisClient.Client(),
		datasource: db,
		tokens:     tokens,
		crm:        crm,
		cache:      cacheInstance,
	}, nil
}

// EnqueueOutreach registers a (contact, channel) pair on the queue. Calling it
// again for the same pair refreshes the denormalized contact fields only.
func (l *Leadrail) EnqueueOutreach(ctx context.Context, entry *model.OutreachEntry) (*model.OutreachEntry, error) {
	channel, err := model.ParseChannel(string(entry.Channel))
	if err != nil {
		return nil, err
	}
	entry.Channel = channel
	if _, err := l.datasource.EnqueueEntry(ctx, entry); err != nil {
		return nil, err
	}
	return l.datasource.GetEntry(ctx, entry.EntryID)
}

// GetOutreachEntry retrieves a queue entry by its ID.
func (l *Leadrail) GetOutreachEntry(ctx context.Context, entryID string) (*model.OutreachEntry, error) {
	return l.datasource.GetEntry(ctx, entryID)
}

// RemoveOutreachEntry deletes a queue entry.
func (l *Leadrail) RemoveOutreachEntry(ctx context.Context, entryID string) error {
	return l.datasource.RemoveEntry(ctx, entryID)
}

// ExcludeEntry retires an entry because a human has taken over the contact.
// The entry moves to REPLIED so it never schedules again.
func (l *Leadrail) ExcludeEntry(ctx context.Context, entryID string) error {
	entry, err := l.datasource.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	entry.Status = model.EntryReplied
	return l.datasource.UpdateEntryResult(ctx, entry)
}

// CleanupQueue removes entries that have neither a phone nor an email and so
// can never be contacted on any channel.
func (l *Leadrail) CleanupQueue(ctx context.Context) (int64, error) {
	return l.datasource.CleanupOrphanEntries(ctx)
}

// ConnectIntegration persists a tenant's OAuth completion and drops any stale
// cached credential.
func (l *Leadrail) ConnectIntegration(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	created, err := l.datasource.CreateIntegration(ctx, integration)
	if err != nil {
		return nil, err
	}
	l.tokens.Invalidate(ctx, integration.TenantID)
	return created, nil
}

// RefreshIntegration forces a token exchange for the tenant.
func (l *Leadrail) RefreshIntegration(ctx context.Context, tenantID string) error {
	return l.tokens.ForceRefresh(ctx, tenantID)
}

// DisconnectIntegration soft-disables a tenant's CRM credential.
func (l *Leadrail) DisconnectIntegration(ctx context.Context, tenantID string) error {
	if err := l.datasource.DeactivateIntegration(ctx, tenantID); err != nil {
		return err
	}
	l.tokens.Invalidate(ctx, tenantID)
	return nil
}

// ScheduleCycle defers a scheduler cycle for the channel to the workers. The
// task ID collapses overlapping triggers into one queued run per channel.
func (l *Leadrail) ScheduleCycle(channel model.Channel) error {
	if _, err := model.ParseChannel(string(channel)); err != nil {
		return apierror.NewAPIError(apierror.ErrBadRequest, err.Error(), err)
	}
	return l.queue.QueueCycle(channel)
}

// DeferInboundEvent queues a CRM webhook event for the workers so the webhook
// endpoint can acknowledge immediately.
func (l *Leadrail) DeferInboundEvent(ctx context.Context, event InboundEvent) error {
	if _, ok := model.StatusForEvent(event.Type); !ok {
		return apierror.NewAPIError(apierror.ErrBadRequest, fmt.Sprintf("unknown inbound event type: %s", event.Type), nil)
	}
	return l.queue.QueueInboundEvent(event)
}

// RetryLeadSync flips a FAILED lead back to SYNCING and schedules a repair
// pass for its tenant. This is the only path out of FAILED.
func (l *Leadrail) RetryLeadSync(ctx context.Context, leadID string) error {
	lead, err := l.datasource.GetLeadByID(ctx, leadID)
	if err != nil {
		return err
	}
	if err := lead.CanTransitionTo(model.SyncSyncing); err != nil {
		return apierror.NewAPIError(apierror.ErrConflict, err.Error(), err)
	}
	if err := l.datasource.UpdateLeadSyncStatus(ctx, leadID, model.SyncSyncing, ""); err != nil {
		return err
	}
	return l.queue.QueueRepair(lead.TenantID)
}
