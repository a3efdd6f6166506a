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
	"database/sql"
	"time"

	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/model"
	"go.opentelemetry.io/otel"
)

// EnqueueEntry records a (contact, channel) pair in the outreach queue. The
// operation is idempotent: an existing pair only has its denormalized display
// fields and lead back-reference refreshed, never a second row created.
func (d Datasource) EnqueueEntry(ctx context.Context, entry *model.OutreachEntry) (string, error) {
	ctx, span := otel.Tracer("Outreach").Start(ctx, "Enqueueing outreach entry")
	defer span.End()

	if entry.EntryID == "" {
		entry.EntryID = model.GenerateUUIDWithSuffix("oq")
	}
	if entry.Status == "" {
		entry.Status = model.EntryPending
	}
	if entry.NextEligibleSend.IsZero() {
		entry.NextEligibleSend = time.Now()
	}
	entry.CreatedAt = time.Now()

	var entryID string
	err := d.Conn.QueryRowContext(ctx, `
		INSERT INTO outreach_queue (entry_id, contact_id, lead_id, tenant_id, channel, status, next_eligible_send,
			attempts, last_sent_at, contact_name, address, phone, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (contact_id, channel) DO UPDATE SET
			lead_id = COALESCE(NULLIF(EXCLUDED.lead_id, ''), outreach_queue.lead_id),
			contact_name = EXCLUDED.contact_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email
		RETURNING entry_id
	`, entry.EntryID, entry.ContactID, entry.LeadID, entry.TenantID, entry.Channel, entry.Status,
		entry.NextEligibleSend, entry.Attempts, entry.LastSentAt, entry.ContactName, entry.Address,
		entry.Phone, entry.Email, entry.CreatedAt).Scan(&entryID)
	if err != nil {
		return "", apierror.NewAPIError(apierror.ErrInternalServer, "failed to enqueue outreach entry", err)
	}

	entry.EntryID = entryID
	return entryID, nil
}

// GetEntry retrieves a queue entry by its ID.
func (d Datasource) GetEntry(ctx context.Context, entryID string) (*model.OutreachEntry, error) {
	ctx, span := otel.Tracer("Outreach").Start(ctx, "Fetching outreach entry")
	defer span.End()

	entry := &model.OutreachEntry{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, entry_id, contact_id, COALESCE(lead_id, ''), tenant_id, channel, status, next_eligible_send,
			attempts, last_sent_at, COALESCE(contact_name, ''), COALESCE(address, ''), COALESCE(phone, ''),
			COALESCE(email, ''), created_at
		FROM outreach_queue
		WHERE entry_id = $1
	`, entryID).Scan(
		&entry.ID, &entry.EntryID, &entry.ContactID, &entry.LeadID, &entry.TenantID, &entry.Channel,
		&entry.Status, &entry.NextEligibleSend, &entry.Attempts, &entry.LastSentAt, &entry.ContactName,
		&entry.Address, &entry.Phone, &entry.Email, &entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "outreach entry not found", err)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to fetch outreach entry", err)
	}

	return entry, nil
}

// DueEntries returns PENDING entries whose next eligible send has passed,
// oldest-eligible first, capped at limit. Terminal statuses never surface
// here regardless of their timestamps.
func (d Datasource) DueEntries(ctx context.Context, channel model.Channel, now time.Time, limit int) ([]*model.OutreachEntry, error) {
	ctx, span := otel.Tracer("Outreach").Start(ctx, "Selecting due outreach entries")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, entry_id, contact_id, COALESCE(lead_id, ''), tenant_id, channel, status, next_eligible_send,
			attempts, last_sent_at, COALESCE(contact_name, ''), COALESCE(address, ''), COALESCE(phone, ''),
			COALESCE(email, ''), created_at
		FROM outreach_queue
		WHERE channel = $1 AND status = $2 AND next_eligible_send <= $3
		ORDER BY next_eligible_send ASC
		LIMIT $4
	`, channel, model.EntryPending, now, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to select due entries", err)
	}
	defer rows.Close()

	var entries []*model.OutreachEntry
	for rows.Next() {
		entry := &model.OutreachEntry{}
		err = rows.Scan(
			&entry.ID, &entry.EntryID, &entry.ContactID, &entry.LeadID, &entry.TenantID, &entry.Channel,
			&entry.Status, &entry.NextEligibleSend, &entry.Attempts, &entry.LastSentAt, &entry.ContactName,
			&entry.Address, &entry.Phone, &entry.Email, &entry.CreatedAt,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to scan outreach entry row", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// UpdateEntryResult persists an entry after its state machine has advanced.
func (d Datasource) UpdateEntryResult(ctx context.Context, entry *model.OutreachEntry) error {
	ctx, span := otel.Tracer("Outreach").Start(ctx, "Updating outreach entry result")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE outreach_queue
		SET status = $2, next_eligible_send = $3, attempts = $4, last_sent_at = $5
		WHERE entry_id = $1
	`, entry.EntryID, entry.Status, entry.NextEligibleSend, entry.Attempts, entry.LastSentAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to update outreach entry", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "outreach entry not found", entry.EntryID)
	}
	return nil
}

// MarkEntriesByContact applies an inbound event transition to a contact's
// entries. A nil channel spans all channels (e.g. a human reply retires every
// pending touch); a specific channel narrows the transition (e.g. an email
// bounce). Terminal entries are left untouched.
func (d Datasource) MarkEntriesByContact(ctx context.Context, contactID string, channel *model.Channel, status model.EntryStatus) (int64, error) {
	ctx, span := otel.Tracer("Outreach").Start(ctx, "Marking outreach entries by contact")
	defer span.End()

	var result sql.Result
	var err error
	if channel == nil {
		result, err = d.Conn.ExecContext(ctx, `
			UPDATE outreach_queue SET status = $2 WHERE contact_id = $1 AND status = $3
		`, contactID, status, model.EntryPending)
	} else {
		result, err = d.Conn.ExecContext(ctx, `
			UPDATE outreach_queue SET status = $2 WHERE contact_id = $1 AND channel = $3 AND status = $4
		`, contactID, status, *channel, model.EntryPending)
	}
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "failed to mark outreach entries", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "failed to read affected rows", err)
	}
	return rows, nil
}

// RemoveEntry deletes a queue entry, used for cleanup and human-takeover
// exclusions.
func (d Datasource) RemoveEntry(ctx context.Context, entryID string) error {
	ctx, span := otel.Tracer("Outreach").Start(ctx, "Removing outreach entry")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `DELETE FROM outreach_queue WHERE entry_id = $1`, entryID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to remove outreach entry", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "outreach entry not found", entryID)
	}
	return nil
}

// CleanupOrphanEntries removes entries that can never be reached: no phone and
// no email on record.
func (d Datasource) CleanupOrphanEntries(ctx context.Context) (int64, error) {
	ctx, span := otel.Tracer("Outreach").Start(ctx, "Cleaning up orphan outreach entries")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		DELETE FROM outreach_queue
		WHERE (phone IS NULL OR phone = '') AND (email IS NULL OR email = '')
	`)
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "failed to clean up orphan entries", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, apierror.NewAPIError(apierror.ErrInternalServer, "failed to read affected rows", err)
	}
	return rows, nil
}
