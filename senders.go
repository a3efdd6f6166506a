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
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/leadrail/leadrail/ghl"
	"github.com/leadrail/leadrail/model"
)

// ChannelSender performs one outreach attempt for an entry. A SKIPPED outcome
// is a dedup deny, not an error; FAILED means a transient transport problem
// that counts against the entry's attempt ceiling.
type ChannelSender interface {
	Channel() model.Channel
	Send(ctx context.Context, entry *model.OutreachEntry) (model.Outcome, error)
}

func (l *Leadrail) senderFor(channel model.Channel) (ChannelSender, error) {
	switch channel {
	case model.ChannelSMS:
		return &smsSender{crm: l.crm}, nil
	case model.ChannelEmail:
		return &emailSender{crm: l.crm}, nil
	case model.ChannelDirectMail:
		return &directMailSender{engine: l}, nil
	}
	return nil, fmt.Errorf("no sender for channel: %s", channel)
}

type smsSender struct {
	crm *ghl.Client
}

func (s *smsSender) Channel() model.Channel { return model.ChannelSMS }

func (s *smsSender) Send(ctx context.Context, entry *model.OutreachEntry) (model.Outcome, error) {
	if entry.Phone == "" {
		return model.OutcomeFailed, fmt.Errorf("entry %s has no phone on record", entry.EntryID)
	}

	_, err := s.crm.SendMessage(ctx, entry.TenantID, ghl.Message{
		Type:      "SMS",
		ContactID: entry.ContactID,
		Body:      smsBody(entry),
	})
	if err != nil {
		return model.OutcomeFailed, err
	}
	return model.OutcomeSent, nil
}

type emailSender struct {
	crm *ghl.Client
}

func (s *emailSender) Channel() model.Channel { return model.ChannelEmail }

func (s *emailSender) Send(ctx context.Context, entry *model.OutreachEntry) (model.Outcome, error) {
	if entry.Email == "" {
		return model.OutcomeFailed, fmt.Errorf("entry %s has no email on record", entry.EntryID)
	}

	_, err := s.crm.SendMessage(ctx, entry.TenantID, ghl.Message{
		Type:      "Email",
		ContactID: entry.ContactID,
		Subject:   emailSubject(entry),
		HTML:      emailBody(entry),
	})
	if err != nil {
		return model.OutcomeFailed, err
	}
	return model.OutcomeSent, nil
}

// directMailSender tags the contact for the mail house. The dedup guard runs
// first: if another sibling in the lead-source group already holds the lock
// tag, the entry is skipped without consuming an attempt. The trigger tag
// rides in the guard's tag write, so the lock and the letter trigger land
// together or not at all.
type directMailSender struct {
	engine *Leadrail
}

func (s *directMailSender) Channel() model.Channel { return model.ChannelDirectMail }

func (s *directMailSender) Send(ctx context.Context, entry *model.OutreachEntry) (model.Outcome, error) {
	decision, err := s.engine.LockDirectMail(ctx, entry.TenantID, entry.ContactID, leadSourceOf(ctx, s.engine, entry), directMailTriggerTag)
	if err != nil {
		return model.OutcomeFailed, err
	}
	if !decision.Allow {
		logrus.Infof("direct mail skipped for entry %s: %s", entry.EntryID, decision.Reason)
		return model.OutcomeSkipped, nil
	}
	return model.OutcomeSent, nil
}

// directMailTriggerTag is the tag the CRM workflow watches to queue a letter.
const directMailTriggerTag = "send_letter"

// leadSourceOf resolves the entry's lead-source group through its lead
// back-reference. An entry with no linked lead has no sibling group.
func leadSourceOf(ctx context.Context, engine *Leadrail, entry *model.OutreachEntry) string {
	if entry.LeadID == "" {
		return ""
	}
	lead, err := engine.datasource.GetLeadByID(ctx, entry.LeadID)
	if err != nil {
		logrus.Warnf("could not resolve lead %s for entry %s: %v", entry.LeadID, entry.EntryID, err)
		return ""
	}
	return lead.LeadSourceID
}

func smsBody(entry *model.OutreachEntry) string {
	if entry.Address != "" {
		return fmt.Sprintf("Hi %s, just checking in about your property at %s. Any interest in discussing an offer? Reply STOP to opt out.", firstWord(entry.ContactName), entry.Address)
	}
	return fmt.Sprintf("Hi %s, just checking in about your property. Any interest in discussing an offer? Reply STOP to opt out.", firstWord(entry.ContactName))
}

func emailSubject(entry *model.OutreachEntry) string {
	if entry.Address != "" {
		return fmt.Sprintf("Regarding your property at %s", entry.Address)
	}
	return "Regarding your property"
}

func emailBody(entry *model.OutreachEntry) string {
	return fmt.Sprintf("<p>Hi %s,</p><p>We wanted to follow up about your property%s. If you have any interest in discussing an offer, just reply to this email.</p>",
		firstWord(entry.ContactName), addressClause(entry))
}

func addressClause(entry *model.OutreachEntry) string {
	if entry.Address == "" {
		return ""
	}
	return " at " + entry.Address
}

func firstWord(name string) string {
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	if name == "" {
		return "there"
	}
	return name
}
