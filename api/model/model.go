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

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/leadrail/leadrail/model"
)

// EnqueueEntry is the request body for registering a (contact, channel) pair
// on the outreach queue.
type EnqueueEntry struct {
	ContactID   string `json:"contact_id"`
	LeadID      string `json:"lead_id"`
	TenantID    string `json:"tenant_id"`
	Channel     string `json:"channel"`
	ContactName string `json:"contact_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

func (e EnqueueEntry) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ContactID, validation.Required),
		validation.Field(&e.TenantID, validation.Required),
		validation.Field(&e.Channel, validation.Required, validation.In("sms", "email", "direct_mail")),
		validation.Field(&e.Email, validation.When(e.Email != "", is.EmailFormat)),
	)
}

func (e EnqueueEntry) ToOutreachEntry() *model.OutreachEntry {
	return &model.OutreachEntry{
		ContactID:   e.ContactID,
		LeadID:      e.LeadID,
		TenantID:    e.TenantID,
		Channel:     model.Channel(e.Channel),
		ContactName: e.ContactName,
		Address:     e.Address,
		Phone:       e.Phone,
		Email:       e.Email,
	}
}

// RunRepair is the request body for a sync repair pass.
type RunRepair struct {
	TenantID string `json:"tenant_id"`
}

func (r RunRepair) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TenantID, validation.Required),
	)
}

// DirectMailLock is the request body for the direct-mail dedup guard.
type DirectMailLock struct {
	TenantID     string `json:"tenant_id"`
	ContactID    string `json:"contact_id"`
	LeadSourceID string `json:"lead_source_id"`
}

func (d DirectMailLock) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.TenantID, validation.Required),
		validation.Field(&d.ContactID, validation.Required),
	)
}

// WebhookEvent is an inbound CRM signal about a contact.
type WebhookEvent struct {
	Type      string `json:"type"`
	ContactID string `json:"contact_id"`
	Channel   string `json:"channel"`
}

func (w WebhookEvent) Validate() error {
	return validation.ValidateStruct(&w,
		validation.Field(&w.Type, validation.Required, validation.In("reply", "bounce", "opt_out")),
		validation.Field(&w.ContactID, validation.Required),
		validation.Field(&w.Channel, validation.In("sms", "email", "direct_mail")),
	)
}

// CreateIntegration persists an OAuth completion for a tenant.
type CreateIntegration struct {
	TenantID     string    `json:"tenant_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	LocationID   string    `json:"location_id"`
}

func (i CreateIntegration) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.TenantID, validation.Required),
		validation.Field(&i.AccessToken, validation.Required),
		validation.Field(&i.RefreshToken, validation.Required),
		validation.Field(&i.ExpiresAt, validation.Required),
		validation.Field(&i.LocationID, validation.Required),
	)
}

func (i CreateIntegration) ToIntegration() *model.Integration {
	return &model.Integration{
		TenantID:     i.TenantID,
		AccessToken:  i.AccessToken,
		RefreshToken: i.RefreshToken,
		ExpiresAt:    i.ExpiresAt,
		LocationID:   i.LocationID,
	}
}
