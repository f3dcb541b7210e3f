package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"

	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/model"
)

func (d Datasource) RecordTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	ctx, span := otel.Tracer("Checkout transaction").Start(ctx, "Saving transaction to db")
	defer span.End()

	metaDataJSON, err := json.Marshal(txn.MetaData)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to marshal metadata", err)
	}

	_, err = d.Conn.ExecContext(ctx,
		`INSERT INTO novatrek.transactions(transaction_id,authorization_id,buyer_id,seller_id,product_id,amount,platform_fee,seller_earnings,currency,status,created_at,meta_data) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		txn.TransactionID, txn.AuthorizationID, txn.BuyerID, txn.SellerID, txn.ProductID, txn.Amount, txn.PlatformFee, txn.SellerEarnings, txn.Currency, txn.Status, txn.CreatedAt, metaDataJSON,
	)

	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to record transaction", err)
	}

	return txn, nil
}

func (d Datasource) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, authorization_id, buyer_id, seller_id, product_id, amount, platform_fee, seller_earnings, currency, status, created_at, meta_data
		FROM novatrek.transactions
		WHERE transaction_id = $1
	`, id)
	return scanTransaction(row, id)
}

func (d Datasource) GetTransactionByAuthorizationID(ctx context.Context, authorizationID string) (*model.Transaction, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT transaction_id, authorization_id, buyer_id, seller_id, product_id, amount, platform_fee, seller_earnings, currency, status, created_at, meta_data
		FROM novatrek.transactions
		WHERE authorization_id = $1
	`, authorizationID)
	return scanTransaction(row, authorizationID)
}

func scanTransaction(row *sql.Row, identifier string) (*model.Transaction, error) {
	txn := &model.Transaction{}
	var metaDataJSON []byte
	err := row.Scan(&txn.TransactionID, &txn.AuthorizationID, &txn.BuyerID, &txn.SellerID, &txn.ProductID,
		&txn.Amount, &txn.PlatformFee, &txn.SellerEarnings, &txn.Currency, &txn.Status, &txn.CreatedAt, &metaDataJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction '%s' not found", identifier), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transaction", err)
	}

	if len(metaDataJSON) > 0 {
		if err := json.Unmarshal(metaDataJSON, &txn.MetaData); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
		}
	}
	return txn, nil
}

func (d Datasource) TransactionExistsByAuthorizationID(ctx context.Context, authorizationID string) (bool, error) {
	ctx, span := otel.Tracer("Checkout transaction").Start(ctx, "Checking ledger row by authorization id")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM novatrek.transactions WHERE authorization_id = $1)
	`, authorizationID).Scan(&exists)

	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check if transaction exists", err)
	}

	return exists, nil
}

func (d Datasource) UpdateTransactionStatus(ctx context.Context, id string, status string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE novatrek.transactions
		SET status = $2
		WHERE transaction_id = $1
	`, id, status)

	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update transaction status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Transaction with ID '%s' not found", id), nil)
	}

	return nil
}

func (d Datasource) GetAllTransactions(ctx context.Context, limit, offset int) ([]model.Transaction, error) {
	rows, err := d.Conn.QueryContext(ctx, `
		SELECT transaction_id, authorization_id, buyer_id, seller_id, product_id, amount, platform_fee, seller_earnings, currency, status, created_at, meta_data
		FROM novatrek.transactions
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve transactions", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		transaction := model.Transaction{}
		var metaDataJSON []byte
		err = rows.Scan(
			&transaction.TransactionID,
			&transaction.AuthorizationID,
			&transaction.BuyerID,
			&transaction.SellerID,
			&transaction.ProductID,
			&transaction.Amount,
			&transaction.PlatformFee,
			&transaction.SellerEarnings,
			&transaction.Currency,
			&transaction.Status,
			&transaction.CreatedAt,
			&metaDataJSON,
		)
		if err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan transaction data", err)
		}

		if len(metaDataJSON) > 0 {
			if err := json.Unmarshal(metaDataJSON, &transaction.MetaData); err != nil {
				return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to unmarshal metadata", err)
			}
		}

		transactions = append(transactions, transaction)
	}

	if err = rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over transactions", err)
	}

	return transactions, nil
}
