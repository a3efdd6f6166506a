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

import "github.com/pkg/errors"

var (
	// ErrIntegrationNotFound means the tenant has never connected the CRM or
	// has disconnected it; the caller should prompt for re-authorization.
	ErrIntegrationNotFound = errors.New("no active CRM integration for tenant")

	// ErrRefreshFailed means the refresh token was rejected by the CRM. The
	// stored credential is unusable until the tenant re-authorizes.
	ErrRefreshFailed = errors.New("CRM token refresh failed")

	// ErrContactNotFound is returned by lookups that resolve no contact.
	ErrContactNotFound = errors.New("contact not found in CRM")
)
