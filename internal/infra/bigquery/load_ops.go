package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/banking-coach/internal/domain"
)

// Snapshot is a full set of core records to load into the dataset.
type Snapshot struct {
	Clients    []domain.Client
	Accounts   []domain.Account
	Cards      []domain.Card
	Movements  []domain.Transaction
	Categories []domain.Category
}

// LoadSnapshotWithClient streams a snapshot into the core tables. Tables must
// already exist; cmd/migrate creates them.
func LoadSnapshotWithClient(ctx context.Context, client *bigquery.Client, t Tables, snap Snapshot) error {
	dataset := client.DatasetInProject(t.Project, t.Dataset)

	clients := make([]*ClientRow, 0, len(snap.Clients))
	for _, c := range snap.Clients {
		clients = append(clients, clientRowFrom(c))
	}
	accounts := make([]*AccountRow, 0, len(snap.Accounts))
	for _, a := range snap.Accounts {
		accounts = append(accounts, accountRowFrom(a))
	}
	cards := make([]*CardRow, 0, len(snap.Cards))
	for _, c := range snap.Cards {
		cards = append(cards, cardRowFrom(c))
	}
	movements := make([]*MovementRow, 0, len(snap.Movements))
	for _, m := range snap.Movements {
		movements = append(movements, movementRowFrom(m))
	}
	categories := make([]*CategoryRow, 0, len(snap.Categories))
	for i, c := range snap.Categories {
		categories = append(categories, categoryRowFrom(c, i+1))
	}

	batches := []struct {
		table string
		rows  interface{}
		n     int
	}{
		{clientsTable, clients, len(clients)},
		{accountsTable, accounts, len(accounts)},
		{cardsTable, cards, len(cards)},
		{movementsTable, movements, len(movements)},
		{categoriesTable, categories, len(categories)},
	}
	for _, b := range batches {
		if b.n == 0 {
			continue
		}
		if err := dataset.Table(b.table).Inserter().Put(ctx, b.rows); err != nil {
			return fmt.Errorf("LoadSnapshotWithClient: inserting into %s: %w", b.table, err)
		}
	}
	return nil
}
