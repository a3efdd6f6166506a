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

package ghl

import "strings"

// DirectMailLockTag marks the single sibling of a lead-source group that
// receives direct mail. Tag comparison is case-insensitive because the CRM
// normalizes tags inconsistently across its surfaces.
const DirectMailLockTag = "dm_lock"

// Contact is the CRM's view of a person. Only the fields the engine reads are
// mapped; the CRM returns many more.
type Contact struct {
	ID           string            `json:"id"`
	LocationID   string            `json:"locationId"`
	FirstName    string            `json:"firstName"`
	LastName     string            `json:"lastName"`
	Name         string            `json:"contactName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Address      string            `json:"address1"`
	City         string            `json:"city"`
	State        string            `json:"state"`
	PostalCode   string            `json:"postalCode"`
	Tags         []string          `json:"tags"`
	CustomFields map[string]string `json:"-"`
}

// HasTag reports whether the contact carries the tag, case-insensitively.
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// SearchFilter narrows a contact search. Zero fields are omitted from the
// query; LeadSourceID groups siblings for direct-mail dedup.
type SearchFilter struct {
	Email        string
	Phone        string
	Query        string
	LeadSourceID string
}

// ContactUpsert is the payload for creating or updating a contact.
type ContactUpsert struct {
	FirstName  string   `json:"firstName,omitempty"`
	LastName   string   `json:"lastName,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Address    string   `json:"address1,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
	LocationID string   `json:"locationId"`
	Tags       []string `json:"tags,omitempty"`
	Source     string   `json:"source,omitempty"`
}

// Message is an outbound SMS or Email send request.
type Message struct {
	Type      string `json:"type"` // "SMS" or "Email"
	ContactID string `json:"contactId"`
	Body      string `json:"message,omitempty"`
	Subject   string `json:"subject,omitempty"`
	HTML      string `json:"html,omitempty"`
}

type searchContactsResponse struct {
	Contacts []Contact `json:"contacts"`
	Total    int       `json:"total"`
}

type contactResponse struct {
	Contact Contact `json:"contact"`
}

type sendMessageResponse struct {
	MessageID      string `json:"messageId"`
	ConversationID string `json:"conversationId"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	LocationID   string `json:"locationId"`
	Error        string `json:"error,omitempty"`
}
