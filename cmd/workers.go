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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/leadrail/leadrail"
	"github.com/leadrail/leadrail/config"
	redis_db "github.com/leadrail/leadrail/internal/redis-db"
	"github.com/leadrail/leadrail/model"

	"github.com/hibiken/asynq"
	"github.com/hibiken/asynqmon"
)

// processCycle runs one scheduler cycle for the channel named in the task
// payload. The cycle itself isolates per-entry failures, so a returned error
// here means the batch could not be fetched at all and the task should retry.
func (b *leadrailInstance) processCycle(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("leadrail.cycle.worker").Start(ctx, "Process Cycle From Redis Queue")
	defer span.End()

	var payload leadrail.CyclePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	summary, err := b.engine.RunCycle(ctx, payload.Channel)
	if err != nil {
		logrus.Infof("Cycle %s pushed back for retry due to error: %v", payload.Channel, err)
		return err
	}

	log.Printf(" [*] Cycle Processed %s attempted=%d sent=%d failed=%d skipped=%d",
		payload.Channel, summary.Attempted, summary.Succeeded, summary.Failed, summary.Skipped)
	return nil
}

// processRepair runs one sync repair pass for the tenant named in the task
// payload.
func (b *leadrailInstance) processRepair(ctx context.Context, t *asynq.Task) error {
	ctx, span := otel.Tracer("leadrail.repair.worker").Start(ctx, "Process Repair From Redis Queue")
	defer span.End()

	var payload leadrail.RepairPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.Error(err)
		return err
	}

	summary, err := b.engine.RepairFailedSyncs(ctx, payload.TenantID)
	if err != nil {
		logrus.Infof("Repair %s pushed back for retry due to error: %v", payload.TenantID, err)
		return err
	}

	log.Printf(" [*] Repair Processed %s total=%d fixed=%d created=%d failed=%d",
		payload.TenantID, summary.Total, summary.Fixed, summary.Created, summary.Failed)
	return nil
}

// processInboundEvent applies a CRM webhook event that the API acknowledged
// and deferred.
func (b *leadrailInstance) processInboundEvent(ctx context.Context, t *asynq.Task) error {
	var event leadrail.InboundEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		logrus.Error(err)
		return err
	}

	updated, err := b.engine.ApplyInboundEvent(ctx, event)
	if err != nil {
		return err
	}

	log.Printf(" [*] Inbound Event Applied %s contact=%s updated=%d", event.Type, event.ContactID, updated)
	return nil
}

// startCycleTicker enqueues a scheduler cycle for every channel on a fixed
// interval. The per-channel task ID keeps at most one queued run per channel.
func startCycleTicker(b *leadrailInstance, conf *config.Configuration) {
	ticker := time.NewTicker(conf.Queue.CycleInterval())
	go func() {
		for range ticker.C {
			for _, channel := range model.Channels {
				if err := b.engine.ScheduleCycle(channel); err != nil {
					logrus.Errorf("failed to schedule %s cycle: %v", channel, err)
				}
			}
		}
	}()
}

func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.CycleQueue] = 1
	queues[cfg.Queue.RepairQueue] = 1
	queues[cfg.Queue.WebhookQueue] = 3
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) (*asynq.Server, error) {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		return nil, fmt.Errorf("error parsing Redis URL: %v", err)
	}

	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:      redisOption.Addr,
			Password:  redisOption.Password,
			DB:        redisOption.DB,
			TLSConfig: redisOption.TLSConfig,
		},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	), nil
}

func initializeTaskHandlers(b *leadrailInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.CycleQueue, b.processCycle)
	mux.HandleFunc(cfg.Queue.RepairQueue, b.processRepair)
	mux.HandleFunc(cfg.Queue.WebhookQueue, b.processInboundEvent)
}

// workerCommands defines the "workers" command to start worker processes.
// The workers drain the cycle, repair and webhook queues.
func workerCommands(b *leadrailInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start leadrail workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			conf, err := config.Fetch()
			if err != nil {
				log.Fatal("Error fetching config:", err)
			}

			shutdown, err := initializeTracing(ctx, conf)
			if err != nil {
				log.Fatal(err)
			}
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error during shutdown: %v", err)
				}
			}()

			queues := initializeQueues()

			srv, err := initializeWorkerServer(conf, queues)
			if err != nil {
				log.Fatal(err)
			}

			mux := asynq.NewServeMux()
			initializeTaskHandlers(b, mux)

			startCycleTicker(b, conf)

			// Start asynqmon server for health checks and monitoring
			redisOption, _ := redis_db.ParseRedisURL(conf.Redis.Dns)
			h := asynqmon.New(asynqmon.Options{
				RootPath: "/monitoring",
				RedisConnOpt: asynq.RedisClientOpt{
					Addr:      redisOption.Addr,
					Password:  redisOption.Password,
					DB:        redisOption.DB,
					TLSConfig: redisOption.TLSConfig,
				},
			})

			go func() {
				monitoringAddr := fmt.Sprintf(":%s", conf.Queue.MonitoringPort)
				log.Printf("Asynqmon server listening on %s/monitoring", monitoringAddr)
				if err := http.ListenAndServe(monitoringAddr, h); err != nil {
					log.Fatalf("could not start asynqmon server: %v", err)
				}
			}()

			if err := srv.Run(mux); err != nil {
				log.Fatalf("could not run server: %v", err)
			}
		},
	}

	return cmd
}
