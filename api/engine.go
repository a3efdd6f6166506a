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

	"github.com/leadrail/leadrail"
	model2 "github.com/leadrail/leadrail/api/model"
	"github.com/leadrail/leadrail/internal/apierror"
	"github.com/leadrail/leadrail/model"
)

// RunCycle drains one batch of due entries for the channel in the route.
func (a Api) RunCycle(c *gin.Context) {
	channelParam, passed := c.Params.Get("channel")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel is required. pass channel in the route /:channel"})
		return
	}

	channel, err := model.ParseChannel(channelParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := a.engine.RunCycle(c.Request.Context(), channel)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

func (a Api) RunRepair(c *gin.Context) {
	var req model2.RunRepair
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	summary, err := a.engine.RepairFailedSyncs(c.Request.Context(), req.TenantID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// LockDirectMail runs the dedup guard and, on an allow, applies the lock tag
// to the given contact.
func (a Api) LockDirectMail(c *gin.Context) {
	var req model2.DirectMailLock
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	decision, err := a.engine.LockDirectMail(c.Request.Context(), req.TenantID, req.ContactID, req.LeadSourceID)
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, decision)
}

// InboundWebhook validates a CRM event and hands it to the workers. The
// endpoint acknowledges as soon as the event is queued so the CRM never waits
// on queue-entry updates.
func (a Api) InboundWebhook(c *gin.Context) {
	var event model2.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := event.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	err := a.engine.DeferInboundEvent(c.Request.Context(), leadrail.InboundEvent{
		Type:      model.InboundEventType(event.Type),
		ContactID: event.ContactID,
		Channel:   event.Channel,
	})
	if err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "event accepted"})
}

func (a Api) RetryLeadSync(c *gin.Context) {
	id, passed := c.Params.Get("id")
	if !passed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required. pass id in the route /:id"})
		return
	}

	if err := a.engine.RetryLeadSync(c.Request.Context(), id); err != nil {
		c.JSON(apierror.MapErrorToHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
