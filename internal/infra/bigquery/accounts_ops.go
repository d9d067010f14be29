package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/banking-coach/internal/domain"
	"google.golang.org/api/iterator"
)

const accountColumns = `
			account_number,
			client_code,
			account_type,
			currency,
			ledger_balance,
			available_balance,
			status`

// ListAccountsWithClient returns the accounts of a client ordered by number.
func ListAccountsWithClient(ctx context.Context, client *bigquery.Client, t Tables, clientCode string) ([]domain.Account, error) {
	q := client.Query(`
		SELECT` + accountColumns + `
		FROM ` + t.ref(accountsTable) + `
		WHERE client_code = @client_code
		ORDER BY account_number
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "client_code", Value: clientCode},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsWithClient: reading query: %w", err)
	}

	accounts := []domain.Account{}
	for {
		var row AccountRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccountsWithClient: iterating: %w", err)
		}
		accounts = append(accounts, row.toDomain())
	}

	if len(accounts) == 0 {
		ok, err := clientExists(ctx, client, t, clientCode)
		if err != nil {
			return nil, fmt.Errorf("ListAccountsWithClient: checking client: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("ListAccountsWithClient: client %s: %w", clientCode, domain.ErrNotFound)
		}
	}
	return accounts, nil
}

// GetAccountWithClient returns one account by number.
func GetAccountWithClient(ctx context.Context, client *bigquery.Client, t Tables, number string) (domain.Account, error) {
	q := client.Query(`
		SELECT` + accountColumns + `
		FROM ` + t.ref(accountsTable) + `
		WHERE account_number = @account_number
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_number", Value: number},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("GetAccountWithClient: reading query: %w", err)
	}
	var row AccountRow
	err = it.Next(&row)
	if err == iterator.Done {
		return domain.Account{}, fmt.Errorf("GetAccountWithClient: account %s: %w", number, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Account{}, fmt.Errorf("GetAccountWithClient: iterating: %w", err)
	}
	return row.toDomain(), nil
}
