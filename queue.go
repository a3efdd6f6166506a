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

package leadrail

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/leadrail/leadrail/config"
	redis_db "github.com/leadrail/leadrail/internal/redis-db"
	"github.com/leadrail/leadrail/model"
)

// Queue hands engine work to the asynq workers: scheduler cycles, repair
// passes and inbound webhook events.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// CyclePayload asks the workers to run one scheduler cycle on a channel.
type CyclePayload struct {
	Channel model.Channel `json:"channel"`
}

// RepairPayload asks the workers to run one sync repair pass for a tenant.
type RepairPayload struct {
	TenantID string `json:"tenant_id"`
}

// NewQueue initializes a Queue from the configured Redis DNS.
func NewQueue(conf *config.Configuration) *Queue {
	redisOption, err := redis_db.ParseRedisURL(conf.Redis.Dns)
	if err != nil {
		log.Fatalf("Error parsing Redis URL: %v", err)
	}

	queueOptions := asynq.RedisClientOpt{Addr: redisOption.Addr, Password: redisOption.Password, DB: redisOption.DB, TLSConfig: redisOption.TLSConfig}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// QueueCycle enqueues a scheduler cycle for one channel. The task ID pins one
// in-flight cycle per channel so overlapping triggers collapse into one run.
func (q *Queue) QueueCycle(channel model.Channel) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(CyclePayload{Channel: channel})
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("cycle:%s", channel)),
		asynq.Queue(cfg.Queue.CycleQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.CycleQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued cycle: %s", channel)
	return nil
}

// QueueRepair enqueues a sync repair pass for a tenant.
func (q *Queue) QueueRepair(tenantID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(RepairPayload{TenantID: tenantID})
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("repair:%s", tenantID)),
		asynq.Queue(cfg.Queue.RepairQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
		asynq.Retention(time.Hour),
	}
	task := asynq.NewTask(cfg.Queue.RepairQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued repair: %s", tenantID)
	return nil
}

// QueueInboundEvent enqueues a CRM webhook event for asynchronous handling so
// the webhook endpoint can acknowledge immediately.
func (q *Queue) QueueInboundEvent(event InboundEvent) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.Queue(cfg.Queue.WebhookQueue),
		asynq.MaxRetry(cfg.Queue.MaxRetryAttempts),
	}
	task := asynq.NewTask(cfg.Queue.WebhookQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	return nil
}
