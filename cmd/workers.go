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

package main

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/FredvanRijswijk/novatrek-engine"
	"github.com/FredvanRijswijk/novatrek-engine/config"
)

// initializeQueues declares the queues the worker consumes and their
// priorities. Ledger retries outrank webhook delivery because a missing
// ledger row blocks reconciliation.
func initializeQueues() map[string]int {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return nil
	}

	queues := make(map[string]int)
	queues[cfg.Queue.WebhookQueue] = 1
	queues[cfg.Queue.LedgerRetryQueue] = 3
	return queues
}

func initializeWorkerServer(conf *config.Configuration, queues map[string]int) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{Addr: conf.Redis.Dns},
		asynq.Config{
			Concurrency: 1,
			Queues:      queues,
		},
	)
}

func initializeTaskHandlers(e *engineInstance, mux *asynq.ServeMux) {
	cfg, err := config.Fetch()
	if err != nil {
		log.Printf("Error fetching config, using defaults: %v", err)
		return
	}

	mux.HandleFunc(cfg.Queue.WebhookQueue, novatrek.ProcessWebhook)
	mux.HandleFunc(cfg.Queue.LedgerRetryQueue, e.engine.ProcessLedgerRetry)
}

// workerCommands starts the background worker that delivers webhooks and
// repairs missing ledger rows.
func workerCommands(e *engineInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "start engine workers",
		Run: func(cmd *cobra.Command, args []string) {
			queues := initializeQueues()

			server := initializeWorkerServer(e.cnf, queues)

			mux := asynq.NewServeMux()
			initializeTaskHandlers(e, mux)

			if err := server.Run(mux); err != nil {
				log.Fatalf("Error running worker server: %v", err)
			}
		},
	}

	return cmd
}
