package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/banking-coach/internal/domain"
)

// DefaultDataset holds the core-banking tables.
const DefaultDataset = "core_banking"

// Table names inside the dataset.
const (
	clientsTable    = "clients"
	accountsTable   = "accounts"
	cardsTable      = "cards"
	movementsTable  = "movements"
	categoriesTable = "categories"
)

// Tables locates the core-banking dataset.
type Tables struct {
	Project string
	Dataset string
}

// ref returns the quoted fully qualified name of a table.
func (t Tables) ref(table string) string {
	return fmt.Sprintf("`%s.%s.%s`", t.Project, t.Dataset, table)
}

// CoreRepository reads the core-banking tables from BigQuery. It holds a
// shared client so every call reuses one connection.
type CoreRepository struct {
	client *bigquery.Client
	tables Tables
}

// NewCoreRepository creates a repository for the dataset in project.
func NewCoreRepository(ctx context.Context, project, dataset string) (*CoreRepository, error) {
	if dataset == "" {
		dataset = DefaultDataset
	}
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewCoreRepository: creating client: %w", err)
	}
	return &CoreRepository{
		client: client,
		tables: Tables{Project: project, Dataset: dataset},
	}, nil
}

// Close closes the BigQuery client connection.
func (r *CoreRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// FindClientByDNI delegates to FindClientByDNIWithClient with the shared client.
func (r *CoreRepository) FindClientByDNI(ctx context.Context, dni string) (domain.Client, error) {
	return FindClientByDNIWithClient(ctx, r.client, r.tables, dni)
}

// GetClient delegates to GetClientWithClient with the shared client.
func (r *CoreRepository) GetClient(ctx context.Context, code string) (domain.Client, error) {
	return GetClientWithClient(ctx, r.client, r.tables, code)
}

// ListAccounts delegates to ListAccountsWithClient with the shared client.
func (r *CoreRepository) ListAccounts(ctx context.Context, clientCode string) ([]domain.Account, error) {
	return ListAccountsWithClient(ctx, r.client, r.tables, clientCode)
}

// GetAccount delegates to GetAccountWithClient with the shared client.
func (r *CoreRepository) GetAccount(ctx context.Context, number string) (domain.Account, error) {
	return GetAccountWithClient(ctx, r.client, r.tables, number)
}

// ListCards delegates to ListCardsWithClient with the shared client.
func (r *CoreRepository) ListCards(ctx context.Context, clientCode string) ([]domain.Card, error) {
	return ListCardsWithClient(ctx, r.client, r.tables, clientCode)
}

// ListMovements delegates to ListMovementsWithClient with the shared client.
func (r *CoreRepository) ListMovements(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	return ListMovementsWithClient(ctx, r.client, r.tables, accountNumber)
}

// ListClientMovements delegates to ListClientMovementsWithClient with the shared client.
func (r *CoreRepository) ListClientMovements(ctx context.Context, clientCode string) ([]domain.Transaction, error) {
	return ListClientMovementsWithClient(ctx, r.client, r.tables, clientCode)
}

// ListCategories delegates to ListActiveCategoriesWithClient with the shared client.
func (r *CoreRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return ListActiveCategoriesWithClient(ctx, r.client, r.tables)
}

// LoadSnapshot delegates to LoadSnapshotWithClient with the shared client.
func (r *CoreRepository) LoadSnapshot(ctx context.Context, snap Snapshot) error {
	return LoadSnapshotWithClient(ctx, r.client, r.tables, snap)
}
