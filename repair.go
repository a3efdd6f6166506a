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
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.opentelemetry.io/otel"

	"github.com/leadrail/leadrail/ghl"
	"github.com/leadrail/leadrail/internal/notification"
	"github.com/leadrail/leadrail/model"
)

// repairBatchSize caps how many broken leads one repair pass walks through.
const repairBatchSize = 100

// nameMatchRatio is the minimum levenshtein similarity for a fuzzy name match
// to count as the same person.
const nameMatchRatio = 0.8

// RepairFailedSyncs walks the tenant's leads whose CRM sync failed or whose
// contact link is missing, and tries to heal each one: adopt an existing CRM
// contact found by email, phone or fuzzy name, or create a fresh contact when
// nothing matches. Per-lead failures are counted, never propagated.
func (l *Leadrail) RepairFailedSyncs(ctx context.Context, tenantID string) (*model.RepairSummary, error) {
	ctx, span := otel.Tracer("Repair").Start(ctx, "Repairing failed lead syncs")
	defer span.End()

	leads, err := l.datasource.GetLeadsNeedingRepair(ctx, tenantID, repairBatchSize)
	if err != nil {
		notification.NotifyError(err)
		return nil, err
	}

	summary := &model.RepairSummary{Total: len(leads)}
	for _, lead := range leads {
		contactID, found, err := l.findContactForLead(ctx, lead)
		if err != nil {
			logrus.Errorf("repair lookup failed for lead %s: %v", lead.LeadID, err)
			summary.Failed++
			continue
		}

		if found {
			if err := l.datasource.LinkLeadContact(ctx, lead.LeadID, contactID); err != nil {
				logrus.Errorf("could not link lead %s to contact %s: %v", lead.LeadID, contactID, err)
				summary.Failed++
				continue
			}
			summary.Fixed++
			continue
		}

		created, err := l.crm.CreateContact(ctx, tenantID, ghl.ContactUpsert{
			FirstName:  lead.FirstName,
			LastName:   lead.LastName,
			Email:      lead.Email,
			Phone:      lead.Phone,
			Address:    lead.Street,
			City:       lead.City,
			State:      lead.State,
			PostalCode: lead.PostalCode,
			Source:     lead.LeadSourceID,
		})
		if err != nil {
			logrus.Errorf("could not create contact for lead %s: %v", lead.LeadID, err)
			if dbErr := l.datasource.IncrementRepairAttempts(ctx, lead.LeadID, err.Error()); dbErr != nil {
				logrus.Errorf("could not record repair attempt for lead %s: %v", lead.LeadID, dbErr)
			}
			summary.Failed++
			continue
		}
		if err := l.datasource.LinkLeadContact(ctx, lead.LeadID, created.ID); err != nil {
			logrus.Errorf("could not link lead %s to created contact %s: %v", lead.LeadID, created.ID, err)
			summary.Failed++
			continue
		}
		summary.Created++
	}

	logrus.Infof("repair complete for tenant %s: fixed=%d created=%d failed=%d total=%d",
		tenantID, summary.Fixed, summary.Created, summary.Failed, summary.Total)
	return summary, nil
}

// findContactForLead resolves the CRM contact a lead should link to, in
// strictly narrowing order: exact email, exact phone, then a fuzzy full-name
// match over the name search results.
func (l *Leadrail) findContactForLead(ctx context.Context, lead *model.Lead) (string, bool, error) {
	if lead.Email != "" {
		contacts, err := l.crm.SearchContacts(ctx, lead.TenantID, ghl.SearchFilter{Email: lead.Email})
		if err != nil {
			return "", false, err
		}
		for i := range contacts {
			if strings.EqualFold(contacts[i].Email, lead.Email) {
				return contacts[i].ID, true, nil
			}
		}
	}

	if lead.Phone != "" {
		contacts, err := l.crm.SearchContacts(ctx, lead.TenantID, ghl.SearchFilter{Phone: lead.Phone})
		if err != nil {
			return "", false, err
		}
		for i := range contacts {
			if normalizePhone(contacts[i].Phone) == normalizePhone(lead.Phone) {
				return contacts[i].ID, true, nil
			}
		}
	}

	fullName := lead.FullName()
	if fullName == "" {
		return "", false, nil
	}
	contacts, err := l.crm.SearchContacts(ctx, lead.TenantID, ghl.SearchFilter{Query: fullName})
	if err != nil {
		return "", false, err
	}
	for i := range contacts {
		if nameMatches(fullName, contactFullName(&contacts[i])) {
			return contacts[i].ID, true, nil
		}
	}

	return "", false, nil
}

func contactFullName(c *ghl.Contact) string {
	if c.Name != "" {
		return c.Name
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// nameMatches compares two person names with a levenshtein similarity ratio,
// tolerating typos and middle initials.
func nameMatches(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	ratio := levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
	return ratio >= nameMatchRatio
}

func normalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	// drop the US country code so +1 (555) 000-1111 equals 5550001111
	if len(s) == 11 && s[0] == '1' {
		s = s[1:]
	}
	return s
}
