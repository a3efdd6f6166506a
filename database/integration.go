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

// CreateIntegration persists a completed OAuth connection for a tenant. A
// re-connect replaces the prior credential in place.
func (d Datasource) CreateIntegration(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	ctx, span := otel.Tracer("Integrations").Start(ctx, "Saving CRM integration")
	defer span.End()

	integration.Active = true
	integration.CreatedAt = time.Now()
	integration.UpdatedAt = integration.CreatedAt

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO ghl_integrations (tenant_id, access_token, refresh_token, expires_at, location_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
		ON CONFLICT (tenant_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			location_id = EXCLUDED.location_id,
			active = TRUE,
			updated_at = EXCLUDED.updated_at
	`, integration.TenantID, integration.AccessToken, integration.RefreshToken, integration.ExpiresAt,
		integration.LocationID, integration.CreatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to save integration", err)
	}

	return integration, nil
}

// GetIntegration retrieves the active credential for a tenant. Deactivated
// credentials behave as if no integration exists.
func (d Datasource) GetIntegration(ctx context.Context, tenantID string) (*model.Integration, error) {
	ctx, span := otel.Tracer("Integrations").Start(ctx, "Fetching CRM integration")
	defer span.End()

	integration := &model.Integration{}
	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, tenant_id, access_token, refresh_token, expires_at, location_id, active, created_at, updated_at
		FROM ghl_integrations
		WHERE tenant_id = $1 AND active = TRUE
	`, tenantID).Scan(
		&integration.ID, &integration.TenantID, &integration.AccessToken, &integration.RefreshToken,
		&integration.ExpiresAt, &integration.LocationID, &integration.Active, &integration.CreatedAt,
		&integration.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "no active integration for tenant", err)
	}
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "failed to fetch integration", err)
	}

	return integration, nil
}

// UpdateIntegrationTokens stores a refreshed token triple. The three fields
// land in a single UPDATE so a crash can never leave a new access token paired
// with a stale refresh token.
func (d Datasource) UpdateIntegrationTokens(ctx context.Context, tenantID, accessToken, refreshToken string, expiresAt time.Time) error {
	ctx, span := otel.Tracer("Integrations").Start(ctx, "Updating CRM integration tokens")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE ghl_integrations
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = NOW()
		WHERE tenant_id = $1 AND active = TRUE
	`, tenantID, accessToken, refreshToken, expiresAt)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to update integration tokens", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "no active integration for tenant", tenantID)
	}
	return nil
}

// DeactivateIntegration soft-disables a tenant's credential on disconnect.
func (d Datasource) DeactivateIntegration(ctx context.Context, tenantID string) error {
	ctx, span := otel.Tracer("Integrations").Start(ctx, "Deactivating CRM integration")
	defer span.End()

	result, err := d.Conn.ExecContext(ctx, `
		UPDATE ghl_integrations SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND active = TRUE
	`, tenantID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "failed to deactivate integration", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, "no active integration for tenant", tenantID)
	}
	return nil
}
