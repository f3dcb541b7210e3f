/*
Copyright 2025 NovaTrek Authors.

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

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT     = "5002"
	DEFAULT_FEE_RATE = 0.15
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"NOVATREK_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"NOVATREK_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"NOVATREK_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"NOVATREK_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"NOVATREK_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"NOVATREK_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"NOVATREK_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns string `json:"dns" envconfig:"NOVATREK_REDIS_DNS"`
}

// ProcessorConfig points the engine at the external payment processor. The
// processor custodies and disburses split payments; the engine only requests
// authorizations scoped to seller sub-accounts.
type ProcessorConfig struct {
	ApiUrl    string `json:"api_url" envconfig:"NOVATREK_PROCESSOR_API_URL"`
	SecretKey string `json:"secret_key" envconfig:"NOVATREK_PROCESSOR_SECRET_KEY"`
}

// CheckoutConfig holds marketplace money policy. FeeRate is the fixed fraction
// of each transaction retained by the platform, applied with half-up rounding
// on minor currency units.
type CheckoutConfig struct {
	FeeRate  float64 `json:"fee_rate" envconfig:"NOVATREK_CHECKOUT_FEE_RATE"`
	Currency string  `json:"currency" envconfig:"NOVATREK_CHECKOUT_CURRENCY"`
}

// RateLimitConfig leaves rate limiting disabled unless both knobs are set.
type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"NOVATREK_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"NOVATREK_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"NOVATREK_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type QueueConfig struct {
	WebhookQueue     string `json:"webhook_queue" envconfig:"NOVATREK_QUEUE_WEBHOOK"`
	LedgerRetryQueue string `json:"ledger_retry_queue" envconfig:"NOVATREK_QUEUE_LEDGER_RETRY"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type Notification struct {
	Slack   SlackWebhook `json:"slack"`
	Webhook struct {
		Url     string            `json:"url"`
		Headers map[string]string `json:"headers"`
	} `json:"webhook"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"NOVATREK_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Processor    ProcessorConfig  `json:"processor"`
	Checkout     CheckoutConfig   `json:"checkout"`
	Queue        QueueConfig      `json:"queue"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
	Notification Notification     `json:"notification"`
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
	err = envconfig.Process("novatrek", &cnf)
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
		return nil, errors.New("config not loaded from file. Create a json file called novatrek.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "NovaTrek Engine"
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
	cnf.Processor.ApiUrl = strings.TrimSpace(cnf.Processor.ApiUrl)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Checkout.FeeRate == 0 {
		cnf.Checkout.FeeRate = DEFAULT_FEE_RATE
		log.Printf("Warning: Fee rate not specified in config. Setting default rate: %.2f", DEFAULT_FEE_RATE)
	}
	if cnf.Checkout.FeeRate < 0 || cnf.Checkout.FeeRate >= 1 {
		return errors.New("checkout fee rate must be between 0 and 1")
	}

	if cnf.Checkout.Currency == "" {
		cnf.Checkout.Currency = "USD"
	}

	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = "new:webhook"
	}
	if cnf.Queue.LedgerRetryQueue == "" {
		cnf.Queue.LedgerRetryQueue = "new:ledger-retry"
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	if mockConfig.Checkout.FeeRate == 0 {
		mockConfig.Checkout.FeeRate = DEFAULT_FEE_RATE
	}
	if mockConfig.Queue.WebhookQueue == "" {
		mockConfig.Queue.WebhookQueue = "new:webhook"
	}
	if mockConfig.Queue.LedgerRetryQueue == "" {
		mockConfig.Queue.LedgerRetryQueue = "new:ledger-retry"
	}
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
