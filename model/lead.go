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

package model

import (
	"fmt"
	"strings"
	"time"
)

// SyncStatus tracks a lead's synchronization state against the CRM.
type SyncStatus string

const (
	SyncNotSynced SyncStatus = "NOT_SYNCED"
	SyncSyncing   SyncStatus = "SYNCING"
	SyncSuccess   SyncStatus = "SUCCESS"
	SyncFailed    SyncStatus = "FAILED"
)

// Lead is a property-owner record owned by exactly one tenant. GHLContactID is
// assigned once the lead has been linked to a CRM contact; LeadSourceID groups
// sibling leads (co-owners of one property) for direct-mail dedup.
type Lead struct {
	ID             int64      `json:"-"`
	LeadID         string     `json:"lead_id"`
	TenantID       string     `json:"tenant_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Street         string     `json:"street,omitempty"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	PostalCode     string     `json:"postal_code,omitempty"`
	GHLContactID   string     `json:"ghl_contact_id,omitempty"`
	SyncStatus     SyncStatus `json:"sync_status"`
	SyncError      string     `json:"sync_error,omitempty"`
	RepairAttempts int        `json:"repair_attempts"`
	LeadSourceID   string     `json:"lead_source_id"`
	ListingStatus  string     `json:"listing_status,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FullName joins the owner's first and last name for CRM identity matching.
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// CanTransitionTo enforces the sync state machine:
// NOT_SYNCED -> SYNCING -> {SUCCESS, FAILED}. FAILED -> SYNCING is allowed only
// through an explicit manual retry; it never auto-loops.
func (l *Lead) CanTransitionTo(next SyncStatus) error {
	allowed := map[SyncStatus][]SyncStatus{
		SyncNotSynced: {SyncSyncing},
		SyncSyncing:   {SyncSuccess, SyncFailed},
		SyncFailed:    {SyncSyncing},
		SyncSuccess:   {},
	}
	for _, s := range allowed[l.SyncStatus] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("invalid sync transition %s -> %s for lead %s", l.SyncStatus, next, l.LeadID)
}
