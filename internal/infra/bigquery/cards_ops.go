package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/banking-coach/internal/domain"
	"google.golang.org/api/iterator"
)

// ListCardsWithClient returns the cards of a client ordered by number.
func ListCardsWithClient(ctx context.Context, client *bigquery.Client, t Tables, clientCode string) ([]domain.Card, error) {
	q := client.Query(`
		SELECT
			card_number,
			linked_account,
			client_code,
			card_type,
			brand,
			expiry,
			status
		FROM ` + t.ref(cardsTable) + `
		WHERE client_code = @client_code
		ORDER BY card_number
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "client_code", Value: clientCode},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCardsWithClient: reading query: %w", err)
	}

	cards := []domain.Card{}
	for {
		var row CardRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCardsWithClient: iterating: %w", err)
		}
		cards = append(cards, row.toDomain())
	}

	if len(cards) == 0 {
		ok, err := clientExists(ctx, client, t, clientCode)
		if err != nil {
			return nil, fmt.Errorf("ListCardsWithClient: checking client: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("ListCardsWithClient: client %s: %w", clientCode, domain.ErrNotFound)
		}
	}
	return cards, nil
}
