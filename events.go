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

	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/model"
)

// InboundEvent is a CRM webhook signal about a contact: a human reply, a
// delivery bounce or an opt-out.
type InboundEvent struct {
	Type      model.InboundEventType `json:"type"`
	ContactID string                 `json:"contact_id"`
	Channel   string                 `json:"channel,omitempty"`
}

// ApplyInboundEvent maps an event onto queue-entry transitions and returns how
// many entries moved. A reply retires the contact's entries on every channel;
// a bounce or opt-out is scoped to the channel it arrived on when one is
// given. Terminal entries are never touched.
func (l *Leadrail) ApplyInboundEvent(ctx context.Context, event InboundEvent) (int64, error) {
	status, ok := model.StatusForEvent(event.Type)
	if !ok {
		return 0, apierror.NewAPIError(apierror.ErrBadRequest, fmt.Sprintf("unknown inbound event type: %s", event.Type), nil)
	}
	if event.ContactID == "" {
		return 0, apierror.NewAPIError(apierror.ErrBadRequest, "inbound event missing contact id", nil)
	}

	var channel *model.Channel
	if event.Type != model.EventReply && event.Channel != "" {
		parsed, err := model.ParseChannel(event.Channel)
		if err != nil {
			return 0, err
		}
		channel = &parsed
	}

	affected, err := l.datasource.MarkEntriesByContact(ctx, event.ContactID, channel, status)
	if err != nil {
		return 0, err
	}

	logrus.Infof("inbound %s for contact %s retired %d entries", event.Type, event.ContactID, affected)
	return affected, nil
}
