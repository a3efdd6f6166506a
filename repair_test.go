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
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadrail/leadrail/model"
)

func TestRepairAdoptsContactByEmail(t *testing.T) {
	engine, ds := newTestEngine(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://crm\.test/contacts/\?`,
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{
			"contacts": []map[string]interface{}{
				{"id": "ghl_match", "email": "Jane@Example.com"},
			},
		}))

	ds.On("GetIntegration", mock.Anything, "tnt_1").Return(freshIntegration("tnt_1"), nil)
	ds.On("GetLeadsNeedingRepair", mock.Anything, "tnt_1", repairBatchSize).Return([]*model.Lead{
		{LeadID: "lead_1", TenantID: "tnt_1", Email: "jane@example.com", SyncStatus: model.SyncFailed},
	}, nil)
	ds.On("LinkLeadContact", mock.Anything, "lead_1", "ghl_match").Return(nil)

	summary, err := engine.RepairFailedSyncs(context.Background(), "tnt_1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Fixed)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 1, summary.Total)
	ds.AssertExpectations(t)
}

func TestRepairMatchesByFuzzyName(t *testing.T) {
	engine, ds := newTestEngine(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://crm\.test/contacts/\?`,
		func(req *http.Request) (*http.Response, error) {
			// nothing matches by phone; the name query returns a near-identical
			// spelling of the owner
			if req.URL.Query().Get("query") == "+15550001111" {
				return httpmock.NewJsonResponse(200, map[string]interface{}{"contacts": []interface{}{}})
			}
			return httpmock.NewJsonResponse(200, map[string]interface{}{
				"contacts": []map[string]interface{}{
					{"id": "ghl_fuzzy", "contactName": "Jon Smithe"},
				},
			})
		})

	ds.On("GetIntegration", mock.Anything, "tnt_1").Return(freshIntegration("tnt_1"), nil)
	ds.On("GetLeadsNeedingRepair", mock.Anything, "tnt_1", repairBatchSize).Return([]*model.Lead{
		{LeadID: "lead_1", TenantID: "tnt_1", FirstName: "John", LastName: "Smith", Phone: "+15550001111", SyncStatus: model.SyncFailed},
	}, nil)
	ds.On("LinkLeadContact", mock.Anything, "lead_1", "ghl_fuzzy").Return(nil)

	summary, err := engine.RepairFailedSyncs(context.Background(), "tnt_1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Fixed)
	ds.AssertExpectations(t)
}

func TestRepairCreatesMissingContact(t *testing.T) {
	engine, ds := newTestEngine(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://crm\.test/contacts/\?`,
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{"contacts": []interface{}{}}))
	httpmock.RegisterResponder("POST", "https://crm.test/contacts/",
		httpmock.NewJsonResponderOrPanic(201, map[string]interface{}{
			"contact": map[string]string{"id": "ghl_new"},
		}))

	ds.On("GetIntegration", mock.Anything, "tnt_1").Return(freshIntegration("tnt_1"), nil)
	ds.On("GetLeadsNeedingRepair", mock.Anything, "tnt_1", repairBatchSize).Return([]*model.Lead{
		{LeadID: "lead_1", TenantID: "tnt_1", FirstName: "Jane", LastName: "Doe", Email: "jane@example.com", SyncStatus: model.SyncFailed},
	}, nil)
	ds.On("LinkLeadContact", mock.Anything, "lead_1", "ghl_new").Return(nil)

	summary, err := engine.RepairFailedSyncs(context.Background(), "tnt_1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Fixed)
	ds.AssertExpectations(t)
}

func TestRepairCountsCreateFailure(t *testing.T) {
	engine, ds := newTestEngine(t)

	httpmock.Activate()
	defer httpmock.DeactivateAndReset()
	httpmock.RegisterResponder("GET", `=~^https://crm\.test/contacts/\?`,
		httpmock.NewJsonResponderOrPanic(200, map[string]interface{}{"contacts": []interface{}{}}))
	httpmock.RegisterResponder("POST", "https://crm.test/contacts/",
		httpmock.NewJsonResponderOrPanic(422, map[string]string{"message": "invalid payload"}))

	ds.On("GetIntegration", mock.Anything, "tnt_1").Return(freshIntegration("tnt_1"), nil)
	ds.On("GetLeadsNeedingRepair", mock.Anything, "tnt_1", repairBatchSize).Return([]*model.Lead{
		{LeadID: "lead_1", TenantID: "tnt_1", FirstName: "Jane", LastName: "Doe", SyncStatus: model.SyncFailed},
	}, nil)
	ds.On("IncrementRepairAttempts", mock.Anything, "lead_1", mock.Anything).Return(nil)

	summary, err := engine.RepairFailedSyncs(context.Background(), "tnt_1")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	ds.AssertExpectations(t)
}
