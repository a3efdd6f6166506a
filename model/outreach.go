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
	"time"
)

// EntryStatus is the per-channel outreach state of a queue entry.
type EntryStatus string

const (
	EntryPending  EntryStatus = "PENDING"
	EntrySent     EntryStatus = "SENT"
	EntryReplied  EntryStatus = "REPLIED"
	EntryFailed   EntryStatus = "FAILED"
	EntryBounced  EntryStatus = "BOUNCED"
	EntryOptedOut EntryStatus = "OPTED_OUT"
)

// Terminal reports whether the status excludes the entry from all future
// scheduling. SENT is terminal only for one-shot channels; recurring channels
// re-arm to PENDING instead of ever holding SENT.
func (s EntryStatus) Terminal() bool {
	switch s {
	case EntryReplied, EntryFailed, EntryBounced, EntryOptedOut, EntrySent:
		return true
	}
	return false
}

// OutreachEntry is one row per (contact, channel) pair awaiting or having
// received outreach. Contact display fields are denormalized for operational
// visibility; LeadID may be back-filled later by the repair engine.
type OutreachEntry struct {
	ID               int64       `json:"-"`
	EntryID          string      `json:"entry_id"`
	ContactID        string      `json:"contact_id"`
	LeadID           string      `json:"lead_id,omitempty"`
	TenantID         string      `json:"tenant_id"`
	Channel          Channel     `json:"channel"`
	Status           EntryStatus `json:"status"`
	NextEligibleSend time.Time   `json:"next_eligible_send"`
	Attempts         int         `json:"attempts"`
	LastSentAt       *time.Time  `json:"last_sent_at,omitempty"`
	ContactName      string      `json:"contact_name,omitempty"`
	Address          string      `json:"address,omitempty"`
	Phone            string      `json:"phone,omitempty"`
	Email            string      `json:"email,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Orphan reports whether the entry has no reachable contact point and is
// eligible for queue cleanup.
func (e *OutreachEntry) Orphan() bool {
	return e.Phone == "" && e.Email == ""
}

// ApplyOutcome advances the entry's state machine for a send attempt.
//
//	PENDING -(sent, recurring)->  PENDING, re-armed at now+cadence
//	PENDING -(sent, one-shot)->   SENT (terminal)
//	PENDING -(failed)->           PENDING, or FAILED once attempts reach ceiling
//	PENDING -(skipped)->          unchanged; skips never consume attempts
func (e *OutreachEntry) ApplyOutcome(outcome Outcome, cadence time.Duration, ceiling int, now time.Time) {
	switch outcome {
	case OutcomeSent:
		e.Attempts++
		sent := now
		e.LastSentAt = &sent
		if e.Channel.Recurring() {
			e.Status = EntryPending
			e.NextEligibleSend = now.Add(cadence)
		} else {
			e.Status = EntrySent
		}
	case OutcomeFailed:
		e.Attempts++
		if e.Attempts >= ceiling {
			e.Status = EntryFailed
		}
	case OutcomeSkipped:
		// dedup deny, leave the entry untouched
	}
}

// InboundEventType classifies a CRM webhook signal about a contact.
type InboundEventType string

const (
	EventReply  InboundEventType = "reply"
	EventBounce InboundEventType = "bounce"
	EventOptOut InboundEventType = "opt_out"
)

// StatusForEvent maps an inbound event onto the terminal status it produces.
func StatusForEvent(event InboundEventType) (EntryStatus, bool) {
	switch event {
	case EventReply:
		return EntryReplied, true
	case EventBounce:
		return EntryBounced, true
	case EventOptOut:
		return EntryOptedOut, true
	}
	return "", false
}
