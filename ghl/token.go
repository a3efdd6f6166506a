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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/leadrail/leadrail/config"
	"github.com/leadrail/leadrail/database"
	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/internal/cache"
	redlock "github.com/leadrail/leadrail/internal/lock"
	"github.com/leadrail/leadrail/model"
)

// Credential is the live, ready-to-use slice of a tenant's integration.
type Credential struct {
	AccessToken string `json:"access_token"`
	LocationID  string `json:"location_id"`
}

// TokenManager resolves valid access tokens for tenants. Fresh tokens are
// served from a read-through cache; stale ones are exchanged exactly once
// under a redis lease so concurrent workers never race a double refresh.
type TokenManager struct {
	datasource database.IDataSource
	cache      cache.Cache
	redis      redis.UniversalClient
}

func NewTokenManager(datasource database.IDataSource, cache cache.Cache, redisClient redis.UniversalClient) *TokenManager {
	return &TokenManager{
		datasource: datasource,
		cache:      cache,
		redis:      redisClient,
	}
}

func tokenCacheKey(tenantID string) string {
	return fmt.Sprintf("leadrail:token:%s", tenantID)
}

// GetValidToken returns a credential guaranteed fresh for at least the
// configured skew window. A token inside the window is refreshed before being
// handed out; refresh failures surface as ErrRefreshFailed and are never
// silently retried.
func (tm *TokenManager) GetValidToken(ctx context.Context, tenantID string) (*Credential, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	var cached Credential
	if tm.cache != nil {
		if err := tm.cache.Get(ctx, tokenCacheKey(tenantID), &cached); err == nil && cached.AccessToken != "" {
			return &cached, nil
		}
	}

	integration, err := tm.fetchIntegration(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	skew := cfg.GoHighLevel.TokenSkew()
	if integration.NeedsRefresh(skew, now) {
		integration, err = tm.refreshUnderLease(ctx, tenantID, skew)
		if err != nil {
			return nil, err
		}
	}

	cred := &Credential{AccessToken: integration.AccessToken, LocationID: integration.LocationID}
	tm.cacheCredential(ctx, tenantID, cred, integration.ExpiresAt.Add(-skew).Sub(now))
	return cred, nil
}

// Invalidate drops a tenant's cached credential, forcing the next call back
// through the database. Used after manual refresh and disconnect.
func (tm *TokenManager) Invalidate(ctx context.Context, tenantID string) {
	if tm.cache == nil {
		return
	}
	if err := tm.cache.Delete(ctx, tokenCacheKey(tenantID)); err != nil {
		logrus.Warnf("failed to drop cached token for tenant %s: %v", tenantID, err)
	}
}

// ForceRefresh exchanges the tenant's refresh token regardless of expiry.
func (tm *TokenManager) ForceRefresh(ctx context.Context, tenantID string) error {
	integration, err := tm.fetchIntegration(ctx, tenantID)
	if err != nil {
		return err
	}
	if _, err := tm.refresh(ctx, integration); err != nil {
		return err
	}
	tm.Invalidate(ctx, tenantID)
	return nil
}

func (tm *TokenManager) fetchIntegration(ctx context.Context, tenantID string) (*model.Integration, error) {
	integration, err := tm.datasource.GetIntegration(ctx, tenantID)
	if err != nil {
		if apiErr, ok := err.(apierror.APIError); ok && apiErr.Code == apierror.ErrNotFound {
			return nil, ErrIntegrationNotFound
		}
		return nil, err
	}
	return integration, nil
}

// refreshUnderLease serializes the exchange across workers. The holder of the
// lease re-reads the integration first: a peer may have already refreshed
// while this caller waited.
func (tm *TokenManager) refreshUnderLease(ctx context.Context, tenantID string, skew time.Duration) (*model.Integration, error) {
	locker := redlock.NewLocker(tm.redis, redlock.TokenKey(tenantID), model.GenerateUUIDWithSuffix("tok"))
	if err := locker.WaitLock(ctx, 30*time.Second, 10*time.Second); err != nil {
		return nil, errors.Wrap(err, "could not serialize token refresh")
	}
	defer func() {
		if err := locker.Unlock(ctx); err != nil {
			logrus.Warnf("token lease release for tenant %s: %v", tenantID, err)
		}
	}()

	integration, err := tm.fetchIntegration(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !integration.NeedsRefresh(skew, time.Now()) {
		return integration, nil
	}

	return tm.refresh(ctx, integration)
}

// refresh performs one token exchange and persists the new triple atomically.
func (tm *TokenManager) refresh(ctx context.Context, integration *model.Integration) (*model.Integration, error) {
	cfg, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", cfg.GoHighLevel.ClientId)
	form.Set("client_secret", cfg.GoHighLevel.ClientSecret)
	form.Set("refresh_token", integration.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.GoHighLevel.TokenUrl, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrRefreshFailed, err.Error())
	}
	defer resp.Body.Close()

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, errors.Wrap(ErrRefreshFailed, err.Error())
	}
	if resp.StatusCode != http.StatusOK || token.AccessToken == "" {
		logrus.Errorf("token refresh rejected for tenant %s: status %d %s", integration.TenantID, resp.StatusCode, token.Error)
		return nil, ErrRefreshFailed
	}

	expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	err = tm.datasource.UpdateIntegrationTokens(ctx, integration.TenantID, token.AccessToken, token.RefreshToken, expiresAt)
	if err != nil {
		return nil, err
	}

	integration.AccessToken = token.AccessToken
	integration.RefreshToken = token.RefreshToken
	integration.ExpiresAt = expiresAt
	tm.Invalidate(ctx, integration.TenantID)
	return integration, nil
}

func (tm *TokenManager) cacheCredential(ctx context.Context, tenantID string, cred *Credential, ttl time.Duration) {
	if tm.cache == nil || ttl <= 0 {
		return
	}
	if err := tm.cache.Set(ctx, tokenCacheKey(tenantID), cred, ttl); err != nil {
		logrus.Warnf("failed to cache token for tenant %s: %v", tenantID, err)
	}
}
