package bigquery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/banking-coach/internal/domain"
	"google.golang.org/api/iterator"
)

const clientColumns = `
			client_code,
			dni,
			first_names,
			last_names,
			birth_date,
			email,
			phone,
			monthly_income,
			credit_score,
			onboarded_at`

// FindClientByDNIWithClient looks a client up by national id.
func FindClientByDNIWithClient(ctx context.Context, client *bigquery.Client, t Tables, dni string) (domain.Client, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return domain.Client{}, fmt.Errorf("FindClientByDNIWithClient: %w: dni cannot be empty", domain.ErrInvalidInput)
	}
	q := client.Query(`
		SELECT` + clientColumns + `
		FROM ` + t.ref(clientsTable) + `
		WHERE dni = @dni
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "dni", Value: dni},
	}
	return readOneClient(ctx, q, "FindClientByDNIWithClient")
}

// GetClientWithClient looks a client up by client code.
func GetClientWithClient(ctx context.Context, client *bigquery.Client, t Tables, code string) (domain.Client, error) {
	q := client.Query(`
		SELECT` + clientColumns + `
		FROM ` + t.ref(clientsTable) + `
		WHERE client_code = @client_code
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "client_code", Value: code},
	}
	return readOneClient(ctx, q, "GetClientWithClient")
}

func readOneClient(ctx context.Context, q *bigquery.Query, op string) (domain.Client, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return domain.Client{}, fmt.Errorf("%s: reading query: %w", op, err)
	}
	var row ClientRow
	err = it.Next(&row)
	if err == iterator.Done {
		return domain.Client{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Client{}, fmt.Errorf("%s: iterating: %w", op, err)
	}
	return row.toDomain(), nil
}

// clientExists reports whether a client code is known. List queries use it to
// tell an unknown client apart from one without records.
func clientExists(ctx context.Context, client *bigquery.Client, t Tables, code string) (bool, error) {
	_, err := GetClientWithClient(ctx, client, t, code)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return false, err
}
