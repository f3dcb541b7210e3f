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

package database

import (
	"context"

	"github.com/FredvanRijswijk/novatrek-engine/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	waitlist    // Interface for admission queue operations
	application // Interface for seller application review operations
	product     // Interface for product operations
	transaction // Interface for ledger transaction operations
}

// waitlist defines methods for handling waitlist entries. Status transitions
// are single-statement compare-and-set updates so concurrent calls on the same
// entry never lose updates.
type waitlist interface {
	CreateWaitlistEntry(ctx context.Context, entry *model.WaitlistEntry) (*model.WaitlistEntry, error)                // Assigns the next position and inserts the entry atomically
	GetWaitlistEntry(ctx context.Context, id string) (*model.WaitlistEntry, error)                                    // Retrieves an entry by ID
	GetWaitlistEntryByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error)                          // Retrieves an entry by normalized email
	TransitionWaitlistEntry(ctx context.Context, id string, fromStatus, toStatus string) (bool, error)                // CAS transition by id; reports whether a row moved
	TransitionWaitlistEntryByEmail(ctx context.Context, email string, fromStatus, toStatus string) (bool, error)      // CAS transition by normalized email
	GetWaitlistEntriesByStatus(ctx context.Context, status string, limit int) ([]*model.WaitlistEntry, error)         // Entries in a status ordered by ascending position
	GetAllWaitlistEntries(ctx context.Context) ([]*model.WaitlistEntry, error)                                        // All entries ordered by position, for export
}

// application defines methods for handling seller applications and profiles.
type application interface {
	CreateSellerApplication(ctx context.Context, application *model.SellerApplication) (*model.SellerApplication, error) // Records a new application
	GetSellerApplication(ctx context.Context, id string) (*model.SellerApplication, error)                               // Retrieves an application by ID
	UpdateSellerApplicationStatus(ctx context.Context, id, status, notes, reviewedBy string) (bool, error)               // CAS update guarded on non-terminal status
	ApproveSellerApplication(ctx context.Context, id, notes, reviewedBy string, profile *model.SellerProfile) (bool, error) // Status update + profile insert in one transaction
	GetSellerProfile(ctx context.Context, id string) (*model.SellerProfile, error)                                       // Retrieves a profile by ID
	SellerSlugExists(ctx context.Context, slug string) (bool, error)                                                     // Checks slug uniqueness
	UpdateSellerPayoutAccount(ctx context.Context, id, payoutAccountID string) error                                     // Records the processor sub-account after onboarding
}

// product defines methods for handling products.
type product interface {
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) // Creates a new product
	GetProduct(ctx context.Context, id string) (*model.Product, error)                 // Retrieves a product by ID
}

// transaction defines methods for handling ledger transactions.
type transaction interface {
	RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)            // Records a new transaction
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)                            // Retrieves a transaction by ID
	GetTransactionByAuthorizationID(ctx context.Context, authorizationID string) (*model.Transaction, error) // Retrieves a transaction by processor authorization id
	TransactionExistsByAuthorizationID(ctx context.Context, authorizationID string) (bool, error)         // Checks if a ledger row exists for an authorization
	UpdateTransactionStatus(ctx context.Context, id string, status string) error                          // Updates the status of a transaction
	GetAllTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error)               // Retrieves transactions, newest first
}
