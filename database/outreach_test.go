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
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/model"
)

func TestEnqueueEntry(t *testing.T) {
	ds, mock := newTestDatasource(t)

	entry := &model.OutreachEntry{
		ContactID:   "ghl_1",
		LeadID:      "lead_1",
		TenantID:    "tnt_1",
		Channel:     model.ChannelSMS,
		ContactName: "Jane Doe",
		Phone:       "+15550001111",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO outreach_queue")).
		WithArgs(sqlmock.AnyArg(), entry.ContactID, entry.LeadID, entry.TenantID, entry.Channel,
			model.EntryPending, sqlmock.AnyArg(), 0, nil, entry.ContactName, "", entry.Phone, "",
			sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"entry_id"}).AddRow("oq_existing"))

	entryID, err := ds.EnqueueEntry(context.Background(), entry)
	require.NoError(t, err)
	assert.Equal(t, "oq_existing", entryID)
	assert.Equal(t, "oq_existing", entry.EntryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDueEntries(t *testing.T) {
	ds, mock := newTestDatasource(t)

	now := time.Now()
	sent := now.Add(-72 * time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "entry_id", "contact_id", "lead_id", "tenant_id", "channel", "status",
		"next_eligible_send", "attempts", "last_sent_at", "contact_name", "address", "phone",
		"email", "created_at",
	}).
		AddRow(1, "oq_1", "ghl_1", "lead_1", "tnt_1", "sms", "PENDING", now.Add(-time.Hour), 1, sent, "Jane Doe", "", "+15550001111", "", now.Add(-100*time.Hour)).
		AddRow(2, "oq_2", "ghl_2", "", "tnt_1", "sms", "PENDING", now.Add(-time.Minute), 0, nil, "John Ray", "", "+15550002222", "", now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outreach_queue")).
		WithArgs(model.ChannelSMS, model.EntryPending, now, 50).
		WillReturnRows(rows)

	entries, err := ds.DueEntries(context.Background(), model.ChannelSMS, now, 50)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "oq_1", entries[0].EntryID)
	assert.NotNil(t, entries[0].LastSentAt)
	assert.Nil(t, entries[1].LastSentAt)
	assert.Empty(t, entries[1].LeadID)
}

func TestUpdateEntryResult(t *testing.T) {
	ds, mock := newTestDatasource(t)

	now := time.Now()
	entry := &model.OutreachEntry{
		EntryID:          "oq_1",
		Channel:          model.ChannelSMS,
		Status:           model.EntryPending,
		NextEligibleSend: now.Add(72 * time.Hour),
		Attempts:         2,
		LastSentAt:       &now,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outreach_queue")).
		WithArgs(entry.EntryID, entry.Status, entry.NextEligibleSend, entry.Attempts, entry.LastSentAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.UpdateEntryResult(context.Background(), entry)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkEntriesByContactAllChannels(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE outreach_queue SET status = $2 WHERE contact_id = $1 AND status = $3")).
		WithArgs("ghl_1", model.EntryReplied, model.EntryPending).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := ds.MarkEntriesByContact(context.Background(), "ghl_1", nil, model.EntryReplied)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}

func TestMarkEntriesByContactSingleChannel(t *testing.T) {
	ds, mock := newTestDatasource(t)

	email := model.ChannelEmail
	mock.ExpectExec(regexp.QuoteMeta("UPDATE outreach_queue SET status = $2 WHERE contact_id = $1 AND channel = $3 AND status = $4")).
		WithArgs("ghl_1", model.EntryBounced, email, model.EntryPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	affected, err := ds.MarkEntriesByContact(context.Background(), "ghl_1", &email, model.EntryBounced)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestRemoveEntryNotFound(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM outreach_queue WHERE entry_id = $1")).
		WithArgs("oq_missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ds.RemoveEntry(context.Background(), "oq_missing")
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestCleanupOrphanEntries(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM outreach_queue")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := ds.CleanupOrphanEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
}
