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

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5002"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	Secure    bool   `json:"secure" envconfig:"LEADRAIL_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"LEADRAIL_SERVER_SECRET_KEY"`
	Port      string `json:"port" envconfig:"LEADRAIL_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"LEADRAIL_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"LEADRAIL_REDIS_DNS"`
}

// GoHighLevelConfig holds the connection settings for the external CRM.
// ApiVersion is sent as the Version header on every call; TokenSkewSec is the
// window before expiry inside which a token is treated as stale.
type GoHighLevelConfig struct {
	BaseUrl      string `json:"base_url" envconfig:"LEADRAIL_GHL_BASE_URL"`
	TokenUrl     string `json:"token_url" envconfig:"LEADRAIL_GHL_TOKEN_URL"`
	ClientId     string `json:"client_id" envconfig:"LEADRAIL_GHL_CLIENT_ID"`
	ClientSecret string `json:"client_secret" envconfig:"LEADRAIL_GHL_CLIENT_SECRET"`
	ApiVersion   string `json:"api_version" envconfig:"LEADRAIL_GHL_API_VERSION"`
	TokenSkewSec int    `json:"token_skew_sec" envconfig:"LEADRAIL_GHL_TOKEN_SKEW_SEC"`
}

// ChannelConfig is the per-channel scheduling table: how often an entry can be
// re-sent, how many failed attempts are tolerated, and how a batch cycle paces
// its outbound calls.
type ChannelConfig struct {
	CadenceHours        int `json:"cadence_hours"`
	AttemptCeiling      int `json:"attempt_ceiling"`
	BatchSize           int `json:"batch_size"`
	InterRequestDelayMs int `json:"inter_request_delay_ms"`
}

type ChannelsConfig struct {
	SMS        ChannelConfig `json:"sms"`
	Email      ChannelConfig `json:"email"`
	DirectMail ChannelConfig `json:"direct_mail"`
}

type QueueConfig struct {
	CycleQueue       string `json:"cycle_queue" envconfig:"LEADRAIL_QUEUE_CYCLE"`
	RepairQueue      string `json:"repair_queue" envconfig:"LEADRAIL_QUEUE_REPAIR"`
	WebhookQueue     string `json:"webhook_queue" envconfig:"LEADRAIL_QUEUE_WEBHOOK"`
	MonitoringPort   string `json:"monitoring_port" envconfig:"LEADRAIL_QUEUE_MONITORING_PORT"`
	MaxRetryAttempts int    `json:"max_retry_attempts" envconfig:"LEADRAIL_QUEUE_MAX_RETRY_ATTEMPTS"`
	CycleIntervalMin int    `json:"cycle_interval_min" envconfig:"LEADRAIL_QUEUE_CYCLE_INTERVAL_MIN"`
}

// CycleInterval returns how often the workers enqueue scheduler cycles.
func (q QueueConfig) CycleInterval() time.Duration {
	return time.Duration(q.CycleIntervalMin) * time.Minute
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"LEADRAIL_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"LEADRAIL_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"LEADRAIL_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName     string            `json:"project_name" envconfig:"LEADRAIL_PROJECT_NAME"`
	EnableTelemetry bool              `json:"enable_telemetry" envconfig:"LEADRAIL_ENABLE_TELEMETRY"`
	OtlpEndpoint    string            `json:"otlp_endpoint" envconfig:"LEADRAIL_OTLP_ENDPOINT"`
	Server          ServerConfig      `json:"server"`
	DataSource      DataSourceConfig  `json:"data_source"`
	Redis           RedisConfig       `json:"redis"`
	GoHighLevel     GoHighLevelConfig `json:"gohighlevel"`
	Channels        ChannelsConfig    `json:"channels"`
	Queue           QueueConfig       `json:"queue"`
	Notification    Notification      `json:"notification"`
	RateLimit       RateLimitConfig   `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("leadrail", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called leadrail.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Leadrail Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.GoHighLevel.BaseUrl == "" {
		cnf.GoHighLevel.BaseUrl = "https://services.leadconnectorhq.com"
	}
	if cnf.GoHighLevel.TokenUrl == "" {
		cnf.GoHighLevel.TokenUrl = "https://services.leadconnectorhq.com/oauth/token"
	}
	if cnf.GoHighLevel.ApiVersion == "" {
		cnf.GoHighLevel.ApiVersion = "2021-07-28"
	}
	if cnf.GoHighLevel.TokenSkewSec == 0 {
		cnf.GoHighLevel.TokenSkewSec = 300
	}

	cnf.Channels.SMS.applyDefaults(72, 5, 50, 500)
	cnf.Channels.Email.applyDefaults(120, 5, 100, 500)
	cnf.Channels.DirectMail.applyDefaults(0, 1, 25, 1000)

	if cnf.Queue.CycleQueue == "" {
		cnf.Queue.CycleQueue = "leadrail:cycle"
	}
	if cnf.Queue.RepairQueue == "" {
		cnf.Queue.RepairQueue = "leadrail:repair"
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "leadrail:webhook"
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = "5003"
	}
	if cnf.Queue.MaxRetryAttempts == 0 {
		cnf.Queue.MaxRetryAttempts = 3
	}
	if cnf.Queue.CycleIntervalMin == 0 {
		cnf.Queue.CycleIntervalMin = 5
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

func (c *ChannelConfig) applyDefaults(cadenceHours, ceiling, batch, delayMs int) {
	if c.CadenceHours == 0 {
		c.CadenceHours = cadenceHours
	}
	if c.AttemptCeiling == 0 {
		c.AttemptCeiling = ceiling
	}
	if c.BatchSize == 0 {
		c.BatchSize = batch
	}
	if c.InterRequestDelayMs == 0 {
		c.InterRequestDelayMs = delayMs
	}
}

// Cadence returns the minimum interval between successive sends on the channel.
func (c ChannelConfig) Cadence() time.Duration {
	return time.Duration(c.CadenceHours) * time.Hour
}

// InterRequestDelay returns the pause applied between outbound calls in a cycle.
func (c ChannelConfig) InterRequestDelay() time.Duration {
	return time.Duration(c.InterRequestDelayMs) * time.Millisecond
}

// TokenSkew returns the freshness window applied before token expiry.
func (g GoHighLevelConfig) TokenSkew() time.Duration {
	return time.Duration(g.TokenSkewSec) * time.Second
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	mockConfig.Channels.SMS.applyDefaults(72, 5, 50, 500)
	mockConfig.Channels.Email.applyDefaults(120, 5, 100, 500)
	mockConfig.Channels.DirectMail.applyDefaults(0, 1, 25, 1000)
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
