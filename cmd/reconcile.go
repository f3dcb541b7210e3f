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
	"context"
	"log"

	"github.com/spf13/cobra"
)

// reconcileCommands repairs the ledger row for a single authorization, for use
// when an operator spots a gap before the retry queue closes it.
func reconcileCommands(e *engineInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile <authorization-id>",
		Short: "rebuild the ledger row for an authorization",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			txn, err := e.engine.ReconcileAuthorization(context.Background(), args[0])
			if err != nil {
				log.Fatalf("Error reconciling authorization %s: %v", args[0], err)
			}
			log.Printf("Authorization %s reconciled to transaction %s", args[0], txn.TransactionID)
		},
	}

	return cmd
}
