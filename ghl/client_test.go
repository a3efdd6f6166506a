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
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadrail/leadrail/model"
)

func setupClientTest(t *testing.T) *Client {
	t.Helper()
	tm, ds := setupTokenTest(t)
	ds.On("GetIntegration", mock.Anything, "tnt_1").Return(&model.Integration{
		TenantID:    "tnt_1",
		AccessToken: "at_1",
		LocationID:  "loc_1",
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}, nil)
	return NewClient(tm)
}

func TestSearchContacts(t *testing.T) {
	client := setupClientTest(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://crm\.test/contacts/\?`,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer at_1", req.Header.Get("Authorization"))
			assert.Equal(t, "2021-07-28", req.Header.Get("Version"))
			assert.Equal(t, "loc_1", req.URL.Query().Get("locationId"))
			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"contacts": []map[string]interface{}{
					{"id": "ghl_1", "email": "jane@example.com", "tags": []string{"DM_Lock"}},
				},
				"total": 1,
			})
		})

	contacts, err := client.SearchContacts(context.Background(), "tnt_1", SearchFilter{Email: "jane@example.com"})
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "ghl_1", contacts[0].ID)
	assert.True(t, contacts[0].HasTag(DirectMailLockTag))
}

func TestGetContactNotFound(t *testing.T) {
	client := setupClientTest(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", "https://crm.test/contacts/ghl_missing",
		httpmock.NewJsonResponderOrPanic(404, map[string]string{"message": "not found"}))

	_, err := client.GetContact(context.Background(), "tnt_1", "ghl_missing")
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestSendMessage(t *testing.T) {
	client := setupClientTest(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("POST", "https://crm.test/conversations/messages",
		httpmock.NewJsonResponderOrPanic(201, map[string]string{"messageId": "msg_1"}))

	messageID, err := client.SendMessage(context.Background(), "tnt_1", Message{
		Type:      "SMS",
		ContactID: "ghl_1",
		Body:      "checking in about your listing",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_1", messageID)
}

func TestSendMessageRetriesRateLimit(t *testing.T) {
	client := setupClientTest(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	calls := 0
	httpmock.RegisterResponder("POST", "https://crm.test/conversations/messages",
		func(req *http.Request) (*http.Response, error) {
			calls++
			if calls == 1 {
				return httpmock.NewJsonResponse(429, map[string]string{"message": "rate limited"})
			}
			return httpmock.NewJsonResponse(200, map[string]string{"messageId": "msg_2"})
		})

	messageID, err := client.SendMessage(context.Background(), "tnt_1", Message{Type: "SMS", ContactID: "ghl_1"})
	require.NoError(t, err)
	assert.Equal(t, "msg_2", messageID)
	assert.Equal(t, 2, calls)
}

func TestAddTags(t *testing.T) {
	client := setupClientTest(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("POST", "https://crm.test/contacts/ghl_1/tags",
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{"tags": []string{"dm_lock"}}))

	err := client.AddTags(context.Background(), "tnt_1", "ghl_1", []string{DirectMailLockTag})
	require.NoError(t, err)
}
