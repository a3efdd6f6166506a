package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel(" SMS ")
	assert.NoError(t, err)
	assert.Equal(t, ChannelSMS, c)

	c, err = ParseChannel("direct_mail")
	assert.NoError(t, err)
	assert.Equal(t, ChannelDirectMail, c)

	_, err = ParseChannel("fax")
	assert.Error(t, err)
}

func TestSyncTransitions(t *testing.T) {
	lead := &Lead{LeadID: "lead_1", SyncStatus: SyncNotSynced}

	assert.NoError(t, lead.CanTransitionTo(SyncSyncing))
	assert.Error(t, lead.CanTransitionTo(SyncSuccess))

	lead.SyncStatus = SyncSyncing
	assert.NoError(t, lead.CanTransitionTo(SyncSuccess))
	assert.NoError(t, lead.CanTransitionTo(SyncFailed))

	// FAILED may re-enter SYNCING, but only via an explicit retry path
	lead.SyncStatus = SyncFailed
	assert.NoError(t, lead.CanTransitionTo(SyncSyncing))
	assert.Error(t, lead.CanTransitionTo(SyncSuccess))

	lead.SyncStatus = SyncSuccess
	assert.Error(t, lead.CanTransitionTo(SyncSyncing))
}

func TestApplyOutcomeSentRecurring(t *testing.T) {
	now := time.Now()
	entry := &OutreachEntry{
		EntryID:          "oq_1",
		ContactID:        "c1",
		Channel:          ChannelSMS,
		Status:           EntryPending,
		NextEligibleSend: now.Add(-time.Hour),
	}

	entry.ApplyOutcome(OutcomeSent, 72*time.Hour, 5, now)

	assert.Equal(t, EntryPending, entry.Status)
	assert.Equal(t, 1, entry.Attempts)
	assert.NotNil(t, entry.LastSentAt)
	assert.Equal(t, now.Add(72*time.Hour), entry.NextEligibleSend)
}

func TestApplyOutcomeSentOneShot(t *testing.T) {
	now := time.Now()
	entry := &OutreachEntry{
		EntryID:   "oq_2",
		ContactID: "c2",
		Channel:   ChannelDirectMail,
		Status:    EntryPending,
	}

	entry.ApplyOutcome(OutcomeSent, 0, 1, now)

	assert.Equal(t, EntrySent, entry.Status)
	assert.True(t, entry.Status.Terminal())
}

func TestApplyOutcomeFailedCeiling(t *testing.T) {
	now := time.Now()
	entry := &OutreachEntry{
		EntryID:   "oq_3",
		ContactID: "c3",
		Channel:   ChannelEmail,
		Status:    EntryPending,
	}

	for i := 0; i < 4; i++ {
		entry.ApplyOutcome(OutcomeFailed, 120*time.Hour, 5, now)
		assert.Equal(t, EntryPending, entry.Status)
	}

	entry.ApplyOutcome(OutcomeFailed, 120*time.Hour, 5, now)
	assert.Equal(t, EntryFailed, entry.Status)
	assert.Equal(t, 5, entry.Attempts)
}

func TestApplyOutcomeSkippedConsumesNothing(t *testing.T) {
	now := time.Now()
	entry := &OutreachEntry{
		EntryID:   "oq_4",
		ContactID: "c4",
		Channel:   ChannelDirectMail,
		Status:    EntryPending,
	}

	entry.ApplyOutcome(OutcomeSkipped, 0, 1, now)

	assert.Equal(t, EntryPending, entry.Status)
	assert.Zero(t, entry.Attempts)
	assert.Nil(t, entry.LastSentAt)
}

func TestStatusForEvent(t *testing.T) {
	status, ok := StatusForEvent(EventReply)
	assert.True(t, ok)
	assert.Equal(t, EntryReplied, status)

	status, ok = StatusForEvent(EventBounce)
	assert.True(t, ok)
	assert.Equal(t, EntryBounced, status)

	status, ok = StatusForEvent(EventOptOut)
	assert.True(t, ok)
	assert.Equal(t, EntryOptedOut, status)

	_, ok = StatusForEvent("delivered")
	assert.False(t, ok)
}

func TestIntegrationNeedsRefresh(t *testing.T) {
	now := time.Now()
	i := &Integration{ExpiresAt: now.Add(10 * time.Minute)}

	assert.False(t, i.NeedsRefresh(5*time.Minute, now))
	assert.True(t, i.NeedsRefresh(15*time.Minute, now))
	assert.True(t, i.NeedsRefresh(10*time.Minute, now))
}

func TestOrphan(t *testing.T) {
	entry := &OutreachEntry{ContactID: "c5"}
	assert.True(t, entry.Orphan())

	entry.Phone = "+15551230000"
	assert.False(t, entry.Orphan())

	entry.Phone = ""
	entry.Email = "owner@example.com"
	assert.False(t, entry.Orphan())
}
