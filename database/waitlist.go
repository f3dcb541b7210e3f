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
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/model"
	"github.com/lib/pq"
)

// CreateWaitlistEntry assigns the next queue position and inserts the entry in
// one database transaction. The position comes from an atomic read-increment-write
// on the single counter row, never from a separate read followed by a write, so
// concurrent signups can not be assigned the same position. A duplicate email
// rolls the whole transaction back, which also returns the counter increment and
// keeps positions gap-free for successful signups.
func (d Datasource) CreateWaitlistEntry(ctx context.Context, entry *model.WaitlistEntry) (*model.WaitlistEntry, error) {
	metaDataJSON, err := json.Marshal(entry.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	err = tx.QueryRowContext(ctx, `
		UPDATE novatrek.waitlist_counters
		SET current_position = current_position + 1
		WHERE id = 1
		RETURNING current_position
	`).Scan(&entry.Position)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to assign waitlist position", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO novatrek.waitlist_entries (waitlist_id, email, name, position, status, created_at, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, entry.WaitlistID, entry.Email, entry.Name, entry.Position, entry.Status, entry.CreatedAt, metaDataJSON)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, apierror.NewAPIError(apierror.ErrDuplicateEntry, fmt.Sprintf("Email '%s' is already on the waitlist", entry.Email), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create waitlist entry", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit waitlist entry", err)
	}

	return entry, nil
}

func (d Datasource) GetWaitlistEntry(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT waitlist_id, email, name, position, status, created_at, approved_at, invited_at, meta_data
		FROM novatrek.waitlist_entries
		WHERE waitlist_id = $1
	`, id)
	return scanWaitlistEntry(row, id)
}

func (d Datasource) GetWaitlistEntryByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT waitlist_id, email, name, position, status, created_at, approved_at, invited_at, meta_data
		FROM novatrek.waitlist_entries
		WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanWaitlistEntry(row, email)
}

func scanWaitlistEntry(row *sql.Row, identifier string) (*model.WaitlistEntry, error) {
	entry := &model.WaitlistEntry{}
	var name sql.NullString
	var metaDataJSON []byte
	err := row.Scan(&entry.WaitlistID, &entry.Email, &name, &entry.Position, &entry.Status, &entry.CreatedAt, &entry.ApprovedAt, &entry.InvitedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Waitlist entry '%s' not found", identifier), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve waitlist entry", err)
	}
	entry.Name = name.String

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &entry.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	return entry, nil
}

// TransitionWaitlistEntry moves an entry between statuses as one atomic
// compare-and-set. The WHERE clause re-verifies the precondition, so two
// concurrent calls can not both win; the loser sees zero rows moved.
func (d Datasource) TransitionWaitlistEntry(ctx context.Context, id string, fromStatus, toStatus string) (bool, error) {
	stamp := timestampColumnFor(toStatus)
	query := fmt.Sprintf(`
		UPDATE novatrek.waitlist_entries
		SET status = $2%s
		WHERE waitlist_id = $1 AND status = $3
	`, stamp)

	result, err := d.Conn.ExecContext(ctx, query, id, toStatus, fromStatus)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to transition waitlist entry", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	return rowsAffected > 0, nil
}

// TransitionWaitlistEntryByEmail is the compare-and-set used by the join hook,
// keyed by normalized email instead of id.
func (d Datasource) TransitionWaitlistEntryByEmail(ctx context.Context, email string, fromStatus, toStatus string) (bool, error) {
	stamp := timestampColumnFor(toStatus)
	query := fmt.Sprintf(`
		UPDATE novatrek.waitlist_entries
		SET status = $2%s
		WHERE LOWER(email) = LOWER($1) AND status = $3
	`, stamp)

	result, err := d.Conn.ExecContext(ctx, query, email, toStatus, fromStatus)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to transition waitlist entry", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	return rowsAffected > 0, nil
}

// timestampColumnFor returns the SET fragment stamping the timestamp column a
// transition owns. Re-approving an entry never re-stamps because the CAS update
// only fires on the first transition.
func timestampColumnFor(toStatus string) string {
	switch toStatus {
	case model.WaitlistStatusApproved:
		return ", approved_at = NOW()"
	case model.WaitlistStatusInvited:
		return ", invited_at = NOW()"
	default:
		return ""
	}
}

// GetWaitlistEntriesByStatus returns entries in a status ordered by ascending
// position. Position order is the admission queue's only fairness guarantee.
func (d Datasource) GetWaitlistEntriesByStatus(ctx context.Context, status string, limit int) ([]*model.WaitlistEntry, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT waitlist_id, email, name, position, status, created_at, approved_at, invited_at, meta_data
		FROM novatrek.waitlist_entries
		WHERE status = $1
		ORDER BY position ASC
		LIMIT $2
	`, status, limit)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve waitlist entries", err)
	}
	defer rows.Close()

	return scanWaitlistEntries(rows)
}

func (d Datasource) GetAllWaitlistEntries(ctx context.Context) ([]*model.WaitlistEntry, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT waitlist_id, email, name, position, status, created_at, approved_at, invited_at, meta_data
		FROM novatrek.waitlist_entries
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve waitlist entries", err)
	}
	defer rows.Close()

	return scanWaitlistEntries(rows)
}

func scanWaitlistEntries(rows *sql.Rows) ([]*model.WaitlistEntry, error) {
	var entries []*model.WaitlistEntry
	for rows.Next() {
		entry := &model.WaitlistEntry{}
		var name sql.NullString
		var metaDataJSON []byte
		err := rows.Scan(&entry.WaitlistID, &entry.Email, &name, &entry.Position, &entry.Status, &entry.CreatedAt, &entry.ApprovedAt, &entry.InvitedAt, &metaDataJSON)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan waitlist entry", err)
		}
		entry.Name = name.String
		if len(metaDataJSON) > 0 {
			if err := json.Unmarshal(metaDataJSON, &entry.MetaData); err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over waitlist entries", err)
	}
	return entries, nil
}
