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
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	model2 "github.com/leadrail/leadrail/api/model"
	"github.com/leadrail/leadrail/ghl"
	"github.com/leadrail/leadrail/internal/apierror"
)

func (a Api) CreateIntegration(c *gin.Context) {
	var req model2.CreateIntegration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	resp, err := a.engine.ConnectIntegration(c.Request.Context(), req.ToIntegration())
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (a Api) RefreshIntegration(c *gin.Context) {
	tenantID, passed := c.Params.Get("tenant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required. pass it in the route /:tenant_id"})
		return
	}

	if err := a.engine.RefreshIntegration(c.Request.Context(), tenantID); err != nil {
		c.JSON(integrationErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a Api) DisconnectIntegration(c *gin.Context) {
	tenantID, passed := c.Params.Get("tenant_id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenant_id is required. pass it in the route /:tenant_id"})
		return
	}

	if err := a.engine.DisconnectIntegration(c.Request.Context(), tenantID); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// integrationErrorStatus maps token-flow failures onto the statuses the
// frontend uses to prompt a re-authorization.
func integrationErrorStatus(err error) int {
	switch {
	case errors.Is(err, ghl.ErrIntegrationNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, ghl.ErrRefreshFailed):
		return http.StatusConflict
	}
	return apierror.MapErrorToHTTPStatus(err)
}
