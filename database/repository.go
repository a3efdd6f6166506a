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

package database

import (
	"context"
	"time"

	"github.com/leadrail/leadrail/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	lead        // Interface for lead-related operations
	outreach    // Interface for outreach queue operations
	integration // Interface for CRM credential operations
}

// lead defines methods for handling leads.
type lead interface {
	CreateLead(ctx context.Context, lead *model.Lead) (*model.Lead, error)                       // Records a new lead
	GetLeadByID(ctx context.Context, leadID string) (*model.Lead, error)                         // Retrieves a lead by ID
	UpdateLeadSyncStatus(ctx context.Context, leadID string, status model.SyncStatus, syncError string) error // Moves a lead through the sync state machine
	LinkLeadContact(ctx context.Context, leadID, contactID string) error                         // Adopts a CRM contact id and marks SUCCESS
	IncrementRepairAttempts(ctx context.Context, leadID string, syncError string) error          // Counts a failed repair pass
	GetLeadsNeedingRepair(ctx context.Context, tenantID string, limit int) ([]*model.Lead, error) // Leads with FAILED sync or no CRM contact
}

// outreach defines methods for the durable per-contact, per-channel queue store.
type outreach interface {
	EnqueueEntry(ctx context.Context, entry *model.OutreachEntry) (string, error)                                             // Idempotent enqueue, returns the entry id
	GetEntry(ctx context.Context, entryID string) (*model.OutreachEntry, error)                                               // Retrieves an entry by ID
	DueEntries(ctx context.Context, channel model.Channel, now time.Time, limit int) ([]*model.OutreachEntry, error)          // PENDING entries eligible to send, oldest first
	UpdateEntryResult(ctx context.Context, entry *model.OutreachEntry) error                                                  // Persists the entry after a state transition
	MarkEntriesByContact(ctx context.Context, contactID string, channel *model.Channel, status model.EntryStatus) (int64, error) // Applies an inbound event transition
	RemoveEntry(ctx context.Context, entryID string) error                                                                    // Removes an entry from the queue
	CleanupOrphanEntries(ctx context.Context) (int64, error)                                                                  // Removes entries with neither phone nor email
}

// integration defines methods for tenant CRM credential records.
type integration interface {
	CreateIntegration(ctx context.Context, integration *model.Integration) (*model.Integration, error) // Persists an OAuth completion
	GetIntegration(ctx context.Context, tenantID string) (*model.Integration, error)                   // Retrieves the active credential for a tenant
	UpdateIntegrationTokens(ctx context.Context, tenantID, accessToken, refreshToken string, expiresAt time.Time) error // Persists the token triple atomically
	DeactivateIntegration(ctx context.Context, tenantID string) error                                  // Soft-disables a credential on disconnect
}
