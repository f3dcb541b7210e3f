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

package novatrek

import (
	"context"

	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/FredvanRijswijk/novatrek-engine/database"
	"github.com/FredvanRijswijk/novatrek-engine/internal/processor"
	"github.com/FredvanRijswijk/novatrek-engine/model"
	"github.com/redis/go-redis/v9"
)

// NovaTrek is the admission-and-transaction engine: the waitlist admission
// queue, the seller application reviewer, the checkout orchestrator, and the
// ledger reconciler, all over one shared datasource and one payment processor.
type NovaTrek struct {
	queue      *Queue
	redis      redis.UniversalClient
	datasource database.IDataSource
	processor  processor.Processor
}

// NewNovaTrek initializes the engine with the provided datasource and payment
// processor client. Redis backs the task queue and the reconciler's
// single-flight guard.
func NewNovaTrek(db database.IDataSource, proc processor.Processor) (*NovaTrek, error) {
	configuration, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	redisClient := redis.NewClient(&redis.Options{Addr: configuration.Redis.Dns})
	newQueue := NewQueue(configuration)

	newNovaTrek := &NovaTrek{datasource: db, queue: newQueue, redis: redisClient, processor: proc}
	return newNovaTrek, nil
}

func (n *NovaTrek) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return n.datasource.GetTransaction(ctx, id)
}

func (n *NovaTrek) GetAllTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	return n.datasource.GetAllTransactions(ctx, limit, offset)
}
