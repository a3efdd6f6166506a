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

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/leadrail/leadrail/config"
	"github.com/leadrail/leadrail/internal/request"
)

// retryWindow bounds the backoff applied to a single CRM call. Rate-limit and
// server-side statuses are retried inside this window; everything else is
// classified immediately.
const retryWindow = 10 * time.Second

// Client talks to the GoHighLevel contact directory on behalf of a tenant.
// Every call resolves a fresh access token through the TokenManager, carries
// it as a bearer credential and pins the CRM API version header.
type Client struct {
	tokens *TokenManager
}

func NewClient(tokens *TokenManager) *Client {
	return &Client{tokens: tokens}
}

func (c *Client) buildRequest(ctx context.Context, tenantID, method, path string, payload interface{}) (*http.Request, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	cred, err := c.tokens.GetValidToken(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var req *http.Request
	if payload != nil {
		body, err := request.ToJsonReq(payload)
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, method, cfg.GoHighLevel.BaseUrl+path, body)
		if err != nil {
			return nil, err
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, cfg.GoHighLevel.BaseUrl+path, nil)
		if err != nil {
			return nil, err
		}
	}

	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Version", cfg.GoHighLevel.ApiVersion)
	return req, nil
}

// SearchContacts queries the tenant's contact directory. The filter's fields
// are combined into the CRM's free-text query; the tenant's location scopes
// the search.
func (c *Client) SearchContacts(ctx context.Context, tenantID string, filter SearchFilter) ([]Contact, error) {
	cred, err := c.tokens.GetValidToken(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("locationId", cred.LocationID)
	switch {
	case filter.Email != "":
		params.Set("query", filter.Email)
	case filter.Phone != "":
		params.Set("query", filter.Phone)
	case filter.LeadSourceID != "":
		params.Set("query", filter.LeadSourceID)
	case filter.Query != "":
		params.Set("query", filter.Query)
	}

	var response searchContactsResponse
	resp, err := request.CallWithRetry(func() (*http.Request, error) {
		return c.buildRequest(ctx, tenantID, http.MethodGet, "/contacts/?"+params.Encode(), nil)
	}, &response, retryWindow)
	if err != nil {
		return nil, errors.Wrap(err, "contact search failed")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("contact search returned status %d", resp.StatusCode)
	}

	return response.Contacts, nil
}

// GetContact fetches one contact by its CRM id.
func (c *Client) GetContact(ctx context.Context, tenantID, contactID string) (*Contact, error) {
	var response contactResponse
	resp, err := request.CallWithRetry(func() (*http.Request, error) {
		return c.buildRequest(ctx, tenantID, http.MethodGet, "/contacts/"+contactID, nil)
	}, &response, retryWindow)
	if err != nil {
		return nil, errors.Wrap(err, "contact fetch failed")
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrContactNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("contact fetch returned status %d", resp.StatusCode)
	}

	return &response.Contact, nil
}

// CreateContact registers a new contact under the tenant's location and
// returns the CRM's id for it.
func (c *Client) CreateContact(ctx context.Context, tenantID string, upsert ContactUpsert) (*Contact, error) {
	cred, err := c.tokens.GetValidToken(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	upsert.LocationID = cred.LocationID

	var response contactResponse
	resp, err := request.CallWithRetry(func() (*http.Request, error) {
		return c.buildRequest(ctx, tenantID, http.MethodPost, "/contacts/", upsert)
	}, &response, retryWindow)
	if err != nil {
		return nil, errors.Wrap(err, "contact create failed")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errors.Errorf("contact create returned status %d", resp.StatusCode)
	}

	return &response.Contact, nil
}

// UpdateContact applies a partial update to an existing contact.
func (c *Client) UpdateContact(ctx context.Context, tenantID, contactID string, upsert ContactUpsert) error {
	var response contactResponse
	resp, err := request.CallWithRetry(func() (*http.Request, error) {
		return c.buildRequest(ctx, tenantID, http.MethodPut, "/contacts/"+contactID, upsert)
	}, &response, retryWindow)
	if err != nil {
		return errors.Wrap(err, "contact update failed")
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrContactNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("contact update returned status %d", resp.StatusCode)
	}
	return nil
}

// AddTags appends tags to a contact. Existing tags are preserved by the CRM.
func (c *Client) AddTags(ctx context.Context, tenantID, contactID string, tags []string) error {
	payload := map[string][]string{"tags": tags}

	var response map[string]interface{}
	resp, err := request.CallWithRetry(func() (*http.Request, error) {
		return c.buildRequest(ctx, tenantID, http.MethodPost, fmt.Sprintf("/contacts/%s/tags", contactID), payload)
	}, &response, retryWindow)
	if err != nil {
		return errors.Wrap(err, "tag add failed")
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrContactNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.Errorf("tag add returned status %d", resp.StatusCode)
	}
	return nil
}

// SendMessage dispatches an SMS or Email through the CRM's conversation API.
// Retryable statuses were already retried inside the window; a non-2xx here is
// a transient send failure for the caller to count against the entry's ceiling.
func (c *Client) SendMessage(ctx context.Context, tenantID string, message Message) (string, error) {
	var response sendMessageResponse
	resp, err := request.CallWithRetry(func() (*http.Request, error) {
		return c.buildRequest(ctx, tenantID, http.MethodPost, "/conversations/messages", message)
	}, &response, retryWindow)
	if err != nil {
		return "", errors.Wrap(err, "message send failed")
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errors.Errorf("message send returned status %d", resp.StatusCode)
	}

	return response.MessageID, nil
}
