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

import "time"

// Integration is a tenant's CRM credential record. The token triple
// (access, refresh, expiry) is only ever updated together; partial updates are
// forbidden. Disconnecting deactivates the record, it is never deleted.
type Integration struct {
	ID           int64     `json:"-"`
	TenantID     string    `json:"tenant_id"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	LocationID   string    `json:"location_id"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NeedsRefresh reports whether the access token is inside the skew window and
// must be exchanged before use.
func (i *Integration) NeedsRefresh(skew time.Duration, now time.Time) bool {
	return !now.Before(i.ExpiresAt.Add(-skew))
}
