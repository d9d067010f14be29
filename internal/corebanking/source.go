// Package corebanking talks to the bank's system of record: either a local
// simulation computed from stored core tables or the mainframe CICS gateway.
package corebanking

import (
	"context"

	"github.com/dvloznov/banking-coach/internal/domain"
)

// RecordSource reads the core-banking tables. Unknown clients and accounts
// yield domain.ErrNotFound.
type RecordSource interface {
	FindClientByDNI(ctx context.Context, dni string) (domain.Client, error)
	GetClient(ctx context.Context, code string) (domain.Client, error)
	ListAccounts(ctx context.Context, clientCode string) ([]domain.Account, error)
	GetAccount(ctx context.Context, number string) (domain.Account, error)
	ListCards(ctx context.Context, clientCode string) ([]domain.Card, error)
	// ListMovements returns the movements of one account, oldest first.
	ListMovements(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
	// ListClientMovements returns the movements of every account of a client.
	ListClientMovements(ctx context.Context, clientCode string) ([]domain.Transaction, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}
