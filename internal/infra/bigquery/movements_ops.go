package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/banking-coach/internal/domain"
	"google.golang.org/api/iterator"
)

const movementColumns = `
			m.movement_ts,
			m.seq,
			m.reference,
			m.account_number,
			m.card_number,
			m.direction,
			m.amount,
			m.currency,
			m.description,
			m.mcc,
			m.channel,
			m.counterparty,
			m.location,
			m.balance_after`

// ListMovementsWithClient returns the movements of one account, oldest first.
func ListMovementsWithClient(ctx context.Context, client *bigquery.Client, t Tables, accountNumber string) ([]domain.Transaction, error) {
	if _, err := GetAccountWithClient(ctx, client, t, accountNumber); err != nil {
		return nil, fmt.Errorf("ListMovementsWithClient: %w", err)
	}

	q := client.Query(`
		SELECT` + movementColumns + `
		FROM ` + t.ref(movementsTable) + ` m
		WHERE m.account_number = @account_number
		ORDER BY m.movement_ts, m.seq
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_number", Value: accountNumber},
	}
	return readMovements(ctx, q, "ListMovementsWithClient")
}

// ListClientMovementsWithClient returns the movements of every account of a
// client, oldest first.
func ListClientMovementsWithClient(ctx context.Context, client *bigquery.Client, t Tables, clientCode string) ([]domain.Transaction, error) {
	ok, err := clientExists(ctx, client, t, clientCode)
	if err != nil {
		return nil, fmt.Errorf("ListClientMovementsWithClient: checking client: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("ListClientMovementsWithClient: client %s: %w", clientCode, domain.ErrNotFound)
	}

	q := client.Query(`
		SELECT` + movementColumns + `
		FROM ` + t.ref(movementsTable) + ` m
		INNER JOIN ` + t.ref(accountsTable) + ` a
		  ON m.account_number = a.account_number
		WHERE a.client_code = @client_code
		ORDER BY m.movement_ts, m.seq
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "client_code", Value: clientCode},
	}
	return readMovements(ctx, q, "ListClientMovementsWithClient")
}

func readMovements(ctx context.Context, q *bigquery.Query, op string) ([]domain.Transaction, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query read: %w", op, err)
	}

	movements := []domain.Transaction{}
	for {
		var row MovementRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: iter next: %w", op, err)
		}
		movements = append(movements, row.toDomain())
	}
	return movements, nil
}
