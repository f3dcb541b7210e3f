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
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigFromEnv(t *testing.T) {
	os.Setenv("NOVATREK_DATA_SOURCE_DNS", "postgres://localhost:5432/novatrek?sslmode=disable")
	os.Setenv("NOVATREK_REDIS_DNS", "localhost:6379")
	os.Setenv("NOVATREK_CHECKOUT_FEE_RATE", "0.2")
	defer func() {
		os.Unsetenv("NOVATREK_DATA_SOURCE_DNS")
		os.Unsetenv("NOVATREK_REDIS_DNS")
		os.Unsetenv("NOVATREK_CHECKOUT_FEE_RATE")
	}()

	err := InitConfig("does-not-exist.json")
	require.NoError(t, err)

	cnf, err := Fetch()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/novatrek?sslmode=disable", cnf.DataSource.Dns)
	assert.Equal(t, "localhost:6379", cnf.Redis.Dns)
	assert.Equal(t, 0.2, cnf.Checkout.FeeRate)
	assert.Equal(t, DEFAULT_PORT, cnf.Server.Port)
	assert.Equal(t, "NovaTrek Engine", cnf.ProjectName)
}

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/novatrek"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
	}
	err := cnf.validateAndAddDefaults()
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_FEE_RATE, cnf.Checkout.FeeRate)
	assert.Equal(t, "USD", cnf.Checkout.Currency)
	assert.Equal(t, "new:webhook", cnf.Queue.WebhookQueue)
	assert.Equal(t, "new:ledger-retry", cnf.Queue.LedgerRetryQueue)
}

func TestValidateRejectsMissingDataSource(t *testing.T) {
	cnf := &Configuration{Redis: RedisConfig{Dns: "localhost:6379"}}
	assert.Error(t, cnf.validateAndAddDefaults())
}

func TestValidateRejectsBadFeeRate(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/novatrek"},
		Redis:      RedisConfig{Dns: "localhost:6379"},
		Checkout:   CheckoutConfig{FeeRate: 1.5},
	}
	assert.Error(t, cnf.validateAndAddDefaults())
}
