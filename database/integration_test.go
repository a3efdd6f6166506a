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

package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/model"
)

func TestCreateIntegration(t *testing.T) {
	ds, mock := newTestDatasource(t)

	integration := &model.Integration{
		TenantID:     "tnt_1",
		AccessToken:  "at_1",
		RefreshToken: "rt_1",
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		LocationID:   "loc_1",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ghl_integrations")).
		WithArgs(integration.TenantID, integration.AccessToken, integration.RefreshToken,
			integration.ExpiresAt, integration.LocationID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := ds.CreateIntegration(context.Background(), integration)
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetIntegrationInactive(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ghl_integrations")).
		WithArgs("tnt_disconnected").
		WillReturnRows(sqlmock.NewRows(nil))

	_, err := ds.GetIntegration(context.Background(), "tnt_disconnected")
	require.Error(t, err)
	apiErr, ok := err.(apierror.APIError)
	require.True(t, ok)
	assert.Equal(t, apierror.ErrNotFound, apiErr.Code)
}

func TestUpdateIntegrationTokens(t *testing.T) {
	ds, mock := newTestDatasource(t)

	expiresAt := time.Now().Add(24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE ghl_integrations")).
		WithArgs("tnt_1", "at_2", "rt_2", expiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.UpdateIntegrationTokens(context.Background(), "tnt_1", "at_2", "rt_2", expiresAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateIntegration(t *testing.T) {
	ds, mock := newTestDatasource(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ghl_integrations SET active = FALSE")).
		WithArgs("tnt_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := ds.DeactivateIntegration(context.Background(), "tnt_1")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ghl_integrations SET active = FALSE")).
		WithArgs("tnt_1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ds.DeactivateIntegration(context.Background(), "tnt_1")
	require.Error(t, err)
}
