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
	"database/sql"
	"time"

	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/model"
	"go.opentelemetry.io/otel"
)

// CreateLead inserts a new lead owned by the uploading tenant.
func (d Datasource) CreateLead(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	ctx, span := otel.Tracer("Leads").Start(ctx, "Saving lead to db")
	defer span.End()

	if lead.LeadID == "" {
		lead.LeadID = model.GenerateUUIDWithSuffix("lead")
	}
	if lead.SyncStatus == "" {
		lead.SyncStatus = model.SyncNotSynced
	}
	lead.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO leads (lead_id, tenant_id, first_name, last_name, email, phone, street, city, state, postal_code,
			ghl_contact_id, sync_status, sync_error, repair_attempts, lead_source_id, listing_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, lead.LeadID, lead.TenantID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.Street, lead.City,
		lead.State, lead.PostalCode, lead.GHLContactID, lead.SyncStatus, lead.SyncError, lead.RepairAttempts,
		lead.LeadSourceID, lead.ListingStatus, lead.CreatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to create lead", err)
	}

	return lead, nil
}

// GetLeadByID retrieves a lead by its ID.
func (d Datasource) GetLeadByID(ctx context.Context, leadID string) (*model.Lead, error) {
	ctx, span := otel.Tracer("Leads").Start(ctx, "Fetching lead from db")
	defer span.End()

	lead := &model.Lead{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, lead_id, tenant_id, first_name, last_name, email, phone, street, city, state, postal_code,
			COALESCE(ghl_contact_id, ''), sync_status, COALESCE(sync_error, ''), repair_attempts,
			COALESCE(lead_source_id, ''), COALESCE(listing_status, ''), created_at
		FROM leads
		WHERE lead_id = $1
	`, leadID).Scan(
		&lead.ID, &lead.LeadID, &lead.TenantID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
		&lead.Street, &lead.City, &lead.State, &lead.PostalCode, &lead.GHLContactID, &lead.SyncStatus,
		&lead.SyncError, &lead.RepairAttempts, &lead.LeadSourceID, &lead.ListingStatus, &lead.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "lead not found", err)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to fetch lead", err)
	}

	return lead, nil
}

// UpdateLeadSyncStatus moves a lead to the given sync status and records the
// last sync error (empty string clears it).
func (d Datasource) UpdateLeadSyncStatus(ctx context.Context, leadID string, status model.SyncStatus, syncError string) error {
	ctx, span := otel.Tracer("Leads").Start(ctx, "Updating lead sync status")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE leads SET sync_status = $2, sync_error = $3 WHERE lead_id = $1
	`, leadID, status, syncError)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to update lead sync status", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "lead not found", leadID)
	}
	return nil
}

// LinkLeadContact adopts a CRM contact id for the lead and marks the sync
// SUCCESS, clearing any prior error.
func (d Datasource) LinkLeadContact(ctx context.Context, leadID, contactID string) error {
	ctx, span := otel.Tracer("Leads").Start(ctx, "Linking lead to CRM contact")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE leads SET ghl_contact_id = $2, sync_status = $3, sync_error = '' WHERE lead_id = $1
	`, leadID, contactID, model.SyncSuccess)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to link lead to contact", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "lead not found", leadID)
	}
	return nil
}

// IncrementRepairAttempts counts a failed repair pass against the lead.
func (d Datasource) IncrementRepairAttempts(ctx context.Context, leadID string, syncError string) error {
	ctx, span := otel.Tracer("Leads").Start(ctx, "Incrementing lead repair attempts")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		UPDATE leads SET repair_attempts = repair_attempts + 1, sync_error = $2 WHERE lead_id = $1
	`, leadID, syncError)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to increment repair attempts", err)
	}
	return nil
}

// GetLeadsNeedingRepair scans a tenant's leads with a FAILED sync or no CRM
// contact link, oldest first.
func (d Datasource) GetLeadsNeedingRepair(ctx context.Context, tenantID string, limit int) ([]*model.Lead, error) {
	ctx, span := otel.Tracer("Leads").Start(ctx, "Scanning leads needing repair")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, lead_id, tenant_id, first_name, last_name, email, phone, street, city, state, postal_code,
			COALESCE(ghl_contact_id, ''), sync_status, COALESCE(sync_error, ''), repair_attempts,
			COALESCE(lead_source_id, ''), COALESCE(listing_status, ''), created_at
		FROM leads
		WHERE tenant_id = $1 AND (sync_status = $2 OR ghl_contact_id IS NULL OR ghl_contact_id = '')
		ORDER BY created_at ASC
		LIMIT $3
	`, tenantID, model.SyncFailed, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to scan leads", err)
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead := &model.Lead{}
		err = rows.Scan(
			&lead.ID, &lead.LeadID, &lead.TenantID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
			&lead.Street, &lead.City, &lead.State, &lead.PostalCode, &lead.GHLContactID, &lead.SyncStatus,
			&lead.SyncError, &lead.RepairAttempts, &lead.LeadSourceID, &lead.ListingStatus, &lead.CreatedAt,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to scan lead row", err)
		}
		leads = append(leads, lead)
	}

	return leads, nil
}
