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
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/leadrail/leadrail"
	"github.com/leadrail/leadrail/api/middleware"
	"github.com/leadrail/leadrail/config"
	"github.com/leadrail/leadrail/model"
)

// Engine is the slice of the outreach engine the HTTP surface drives.
type Engine interface {
	RunCycle(ctx context.Context, channel model.Channel) (*model.CycleSummary, error)
	RepairFailedSyncs(ctx context.Context, tenantID string) (*model.RepairSummary, error)
	LockDirectMail(ctx context.Context, tenantID, contactID, leadSourceID string, extraTags ...string) (leadrail.DedupDecision, error)
	EnqueueOutreach(ctx context.Context, entry *model.OutreachEntry) (*model.OutreachEntry, error)
	GetOutreachEntry(ctx context.Context, entryID string) (*model.OutreachEntry, error)
	RemoveOutreachEntry(ctx context.Context, entryID string) error
	ExcludeEntry(ctx context.Context, entryID string) error
	CleanupQueue(ctx context.Context) (int64, error)
	DeferInboundEvent(ctx context.Context, event leadrail.InboundEvent) error
	ConnectIntegration(ctx context.Context, integration *model.Integration) (*model.Integration, error)
	RefreshIntegration(ctx context.Context, tenantID string) error
	DisconnectIntegration(ctx context.Context, tenantID string) error
	RetryLeadSync(ctx context.Context, leadID string) error
}

type Api struct {
	engine Engine
	router *gin.Engine
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/cycles/:channel", a.RunCycle)
	router.POST("/repairs", a.RunRepair)
	router.POST("/direct-mail/locks", a.LockDirectMail)

	router.POST("/queue/entries", a.EnqueueEntry)
	router.GET("/queue/entries/:id", a.GetEntry)
	router.DELETE("/queue/entries/:id", a.RemoveEntry)
	router.POST("/queue/entries/:id/exclude", a.ExcludeEntry)
	router.POST("/queue/cleanup", a.CleanupQueue)

	router.POST("/webhooks/ghl", a.InboundWebhook)

	router.POST("/integrations", a.CreateIntegration)
	router.POST("/integrations/:tenant_id/refresh", a.RefreshIntegration)
	router.DELETE("/integrations/:tenant_id", a.DisconnectIntegration)

	router.POST("/leads/:id/retry-sync", a.RetryLeadSync)
	return a.router
}

func NewAPI(engine Engine) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.EnableTelemetry {
		r.Use(otelgin.Middleware(conf.ProjectName))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{engine: engine, router: r}
}
