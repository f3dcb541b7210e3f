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
	"encoding/json"
	"log"
	"time"

	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/hibiken/asynq"
)

// Queue wraps the asynq client used for background work: webhook delivery and
// ledger retry tasks.
type Queue struct {
	Client    *asynq.Client
	Inspector *asynq.Inspector
}

// NewQueue initializes a new Queue instance with the provided configuration.
func NewQueue(conf *config.Configuration) *Queue {
	queueOptions := asynq.RedisClientOpt{Addr: conf.Redis.Dns}
	client := asynq.NewClient(queueOptions)
	inspector := asynq.NewInspector(queueOptions)
	return &Queue{
		Client:    client,
		Inspector: inspector,
	}
}

// queueLedgerRetry enqueues a task to re-derive a missing ledger row from the
// processor's record of an authorization. The task id is the authorization id,
// so repeated enqueues for the same authorization collapse into one task.
func (q *Queue) queueLedgerRetry(authorizationID string) error {
	cfg, err := config.Fetch()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(authorizationID)
	if err != nil {
		return err
	}
	taskOptions := []asynq.Option{
		asynq.TaskID(authorizationID),
		asynq.Queue(cfg.Queue.LedgerRetryQueue),
		asynq.MaxRetry(10),
		asynq.ProcessIn(5 * time.Second),
	}
	task := asynq.NewTask(cfg.Queue.LedgerRetryQueue, payload, taskOptions...)
	info, err := q.Client.Enqueue(task)
	if err != nil {
		log.Println(err, info)
		return err
	}
	log.Printf(" [*] Successfully enqueued ledger retry: %+v", authorizationID)
	return nil
}
