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
package mocks

import (
	"context"
	"time"

	"github.com/leadrail/leadrail/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Lead methods

func (m *MockDataSource) CreateLead(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	args := m.Called(ctx, lead)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockDataSource) GetLeadByID(ctx context.Context, leadID string) (*model.Lead, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *MockDataSource) UpdateLeadSyncStatus(ctx context.Context, leadID string, status model.SyncStatus, syncError string) error {
	args := m.Called(ctx, leadID, status, syncError)
	return args.Error(0)
}

func (m *MockDataSource) LinkLeadContact(ctx context.Context, leadID, contactID string) error {
	args := m.Called(ctx, leadID, contactID)
	return args.Error(0)
}

func (m *MockDataSource) IncrementRepairAttempts(ctx context.Context, leadID string, syncError string) error {
	args := m.Called(ctx, leadID, syncError)
	return args.Error(0)
}

func (m *MockDataSource) GetLeadsNeedingRepair(ctx context.Context, tenantID string, limit int) ([]*model.Lead, error) {
	args := m.Called(ctx, tenantID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Lead), args.Error(1)
}

// Outreach queue methods

func (m *MockDataSource) EnqueueEntry(ctx context.Context, entry *model.OutreachEntry) (string, error) {
	args := m.Called(ctx, entry)
	return args.String(0), args.Error(1)
}

func (m *MockDataSource) GetEntry(ctx context.Context, entryID string) (*model.OutreachEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OutreachEntry), args.Error(1)
}

func (m *MockDataSource) DueEntries(ctx context.Context, channel model.Channel, now time.Time, limit int) ([]*model.OutreachEntry, error) {
	args := m.Called(ctx, channel, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OutreachEntry), args.Error(1)
}

func (m *MockDataSource) UpdateEntryResult(ctx context.Context, entry *model.OutreachEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockDataSource) MarkEntriesByContact(ctx context.Context, contactID string, channel *model.Channel, status model.EntryStatus) (int64, error) {
	args := m.Called(ctx, contactID, channel, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDataSource) RemoveEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockDataSource) CleanupOrphanEntries(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Integration methods

func (m *MockDataSource) CreateIntegration(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	args := m.Called(ctx, integration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Integration), args.Error(1)
}

func (m *MockDataSource) GetIntegration(ctx context.Context, tenantID string) (*model.Integration, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Integration), args.Error(1)
}

func (m *MockDataSource) UpdateIntegrationTokens(ctx context.Context, tenantID, accessToken, refreshToken string, expiresAt time.Time) error {
	args := m.Called(ctx, tenantID, accessToken, refreshToken, expiresAt)
	return args.Error(0)
}

func (m *MockDataSource) DeactivateIntegration(ctx context.Context, tenantID string) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}
