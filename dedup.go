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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/leadrail/leadrail/ghl"
	redlock "github.com/leadrail/leadrail/internal/lock"
	"github.com/leadrail/leadrail/model"
)

// DedupDecision is the answer of the direct-mail guard: whether a letter may
// go out and, when denied, which sibling already holds the lock.
type DedupDecision struct {
	Allow  bool   `json:"allow"`
	Reason string `json:"reason,omitempty"`
}

// CanSendDirectMail checks whether any sibling in the contact's lead-source
// group already carries the direct-mail lock tag. Tag comparison is
// case-insensitive. An empty lead-source ID means the contact has no sibling
// group and mail is always allowed.
func (l *Leadrail) CanSendDirectMail(ctx context.Context, tenantID, leadSourceID string) (DedupDecision, error) {
	if leadSourceID == "" {
		return DedupDecision{Allow: true, Reason: "no lead-source group"}, nil
	}

	siblings, err := l.crm.SearchContacts(ctx, tenantID, ghl.SearchFilter{LeadSourceID: leadSourceID})
	if err != nil {
		return DedupDecision{}, err
	}

	for i := range siblings {
		if siblings[i].HasTag(ghl.DirectMailLockTag) {
			return DedupDecision{
				Allow:  false,
				Reason: fmt.Sprintf("lock held by sibling contact %s", siblings[i].ID),
			}, nil
		}
	}
	return DedupDecision{Allow: true}, nil
}

// LockDirectMail runs the check-then-tag sequence under a redis lease so two
// concurrent cycles can never both tag a sibling of the same group. On an
// allow, the lock tag and any extra tags are applied to the given contact in a
// single CRM call before the lease is released, so a failed tag write never
// leaves the group holding a lock without its side effects.
func (l *Leadrail) LockDirectMail(ctx context.Context, tenantID, contactID, leadSourceID string, extraTags ...string) (DedupDecision, error) {
	if leadSourceID == "" {
		// no sibling group to lock, but the extra tags still have to land
		if len(extraTags) > 0 {
			if err := l.crm.AddTags(ctx, tenantID, contactID, extraTags); err != nil {
				return DedupDecision{}, err
			}
		}
		return DedupDecision{Allow: true, Reason: "no lead-source group"}, nil
	}

	locker := redlock.NewLocker(l.redis, redlock.DirectMailKey(tenantID, leadSourceID), model.GenerateUUIDWithSuffix("dm"))
	if err := locker.WaitLock(ctx, 30*time.Second, 10*time.Second); err != nil {
		return DedupDecision{}, err
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Warnf("direct-mail lease release for group %s: %v", leadSourceID, err)
		}
	}()

	decision, err := l.CanSendDirectMail(ctx, tenantID, leadSourceID)
	if err != nil || !decision.Allow {
		return decision, err
	}

	tags := append([]string{ghl.DirectMailLockTag}, extraTags...)
	if err := l.crm.AddTags(ctx, tenantID, contactID, tags); err != nil {
		return DedupDecision{}, err
	}
	return DedupDecision{Allow: true}, nil
}
