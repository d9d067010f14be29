// Package memory is an in-process core-banking record source, seeded with a
// small demo bank for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// Store keeps core records in maps guarded by a RWMutex. Values are copied
// on the way in and out.
type Store struct {
	mu         sync.RWMutex
	clients    map[string]domain.Client // by code
	byDNI      map[string]string        // dni -> code
	accounts   map[string]domain.Account
	cards      map[string]domain.Card
	movements  map[string][]domain.Transaction // by account number
	categories []domain.Category
	seq        int64
}

// New creates an empty store using the default category table.
func New() *Store {
	return &Store{
		clients:    make(map[string]domain.Client),
		byDNI:      make(map[string]string),
		accounts:   make(map[string]domain.Account),
		cards:      make(map[string]domain.Card),
		movements:  make(map[string][]domain.Transaction),
		categories: insights.DefaultCategories(),
	}
}

// AddClient registers a client. DNI and code must be unique.
func (s *Store) AddClient(c domain.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.Code]; ok {
		return fmt.Errorf("AddClient: client %s: %w", c.Code, domain.ErrAlreadyExists)
	}
	if _, ok := s.byDNI[c.DNI]; ok {
		return fmt.Errorf("AddClient: dni %s: %w", c.DNI, domain.ErrAlreadyExists)
	}
	s.clients[c.Code] = c
	s.byDNI[c.DNI] = c.Code
	return nil
}

// AddAccount registers an account of an existing client.
func (s *Store) AddAccount(a domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[a.ClientCode]; !ok {
		return fmt.Errorf("AddAccount: client %s: %w", a.ClientCode, domain.ErrNotFound)
	}
	s.accounts[a.Number] = a
	return nil
}

// AddCard registers a card of an existing client.
func (s *Store) AddCard(c domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c.ClientCode]; !ok {
		return fmt.Errorf("AddCard: client %s: %w", c.ClientCode, domain.ErrNotFound)
	}
	s.cards[c.Number] = c
	return nil
}

// AddMovement books a movement on an existing account. A zero ID is assigned
// from the movement timestamp and a store-wide sequence.
func (s *Store) AddMovement(tx domain.Transaction) (domain.Transaction, error) {
	if !tx.Direction.Valid() {
		return domain.Transaction{}, fmt.Errorf("AddMovement: %w: direction %q", domain.ErrInvalidInput, tx.Direction)
	}
	if tx.Amount.IsNegative() {
		return domain.Transaction{}, fmt.Errorf("AddMovement: %w: negative amount", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[tx.AccountNumber]; !ok {
		return domain.Transaction{}, fmt.Errorf("AddMovement: account %s: %w", tx.AccountNumber, domain.ErrNotFound)
	}
	if tx.ID.IsZero() {
		s.seq++
		tx.ID = domain.TxID{Timestamp: tx.Timestamp, Seq: s.seq}
	}
	if tx.Reference == "" {
		tx.Reference = fmt.Sprintf("%s%06d", tx.Timestamp.Format("20060102150405"), tx.ID.Seq)
	}
	s.movements[tx.AccountNumber] = append(s.movements[tx.AccountNumber], tx)
	return tx, nil
}

// SetCategories replaces the category table.
func (s *Store) SetCategories(categories []domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]domain.Category(nil), categories...)
}

// FindClientByDNI returns the client with the given national id.
func (s *Store) FindClientByDNI(ctx context.Context, dni string) (domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.byDNI[strings.TrimSpace(dni)]
	if !ok {
		return domain.Client{}, fmt.Errorf("FindClientByDNI: dni %s: %w", dni, domain.ErrNotFound)
	}
	return s.clients[code], nil
}

// GetClient returns the client with the given code.
func (s *Store) GetClient(ctx context.Context, code string) (domain.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[code]
	if !ok {
		return domain.Client{}, fmt.Errorf("GetClient: client %s: %w", code, domain.ErrNotFound)
	}
	return c, nil
}

// ListAccounts returns the client's accounts ordered by number.
func (s *Store) ListAccounts(ctx context.Context, clientCode string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.clients[clientCode]; !ok {
		return nil, fmt.Errorf("ListAccounts: client %s: %w", clientCode, domain.ErrNotFound)
	}
	out := []domain.Account{}
	for _, a := range s.accounts {
		if a.ClientCode == clientCode {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// GetAccount returns one account by number.
func (s *Store) GetAccount(ctx context.Context, number string) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[number]
	if !ok {
		return domain.Account{}, fmt.Errorf("GetAccount: account %s: %w", number, domain.ErrNotFound)
	}
	return a, nil
}

// ListCards returns the client's cards ordered by number.
func (s *Store) ListCards(ctx context.Context, clientCode string) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.clients[clientCode]; !ok {
		return nil, fmt.Errorf("ListCards: client %s: %w", clientCode, domain.ErrNotFound)
	}
	out := []domain.Card{}
	for _, c := range s.cards {
		if c.ClientCode == clientCode {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// ListMovements returns an account's movements, oldest first.
func (s *Store) ListMovements(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[accountNumber]; !ok {
		return nil, fmt.Errorf("ListMovements: account %s: %w", accountNumber, domain.ErrNotFound)
	}
	out := append([]domain.Transaction{}, s.movements[accountNumber]...)
	sortOldestFirst(out)
	return out, nil
}

// ListClientMovements returns the movements of all accounts of a client, oldest first.
func (s *Store) ListClientMovements(ctx context.Context, clientCode string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.clients[clientCode]; !ok {
		return nil, fmt.Errorf("ListClientMovements: client %s: %w", clientCode, domain.ErrNotFound)
	}
	out := []domain.Transaction{}
	for number, a := range s.accounts {
		if a.ClientCode == clientCode {
			out = append(out, s.movements[number]...)
		}
	}
	sortOldestFirst(out)
	return out, nil
}

// ListCategories returns the category table in priority order.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...), nil
}

func sortOldestFirst(txs []domain.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].ID.Less(txs[j].ID) })
}

// Dump is a copy of every record in the store.
type Dump struct {
	Clients    []domain.Client
	Accounts   []domain.Account
	Cards      []domain.Card
	Movements  []domain.Transaction
	Categories []domain.Category
}

// Dump copies the store contents, ordered by key and movements oldest first.
func (s *Store) Dump() Dump {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var d Dump
	for _, c := range s.clients {
		d.Clients = append(d.Clients, c)
	}
	sort.Slice(d.Clients, func(i, j int) bool { return d.Clients[i].Code < d.Clients[j].Code })
	for _, a := range s.accounts {
		d.Accounts = append(d.Accounts, a)
		d.Movements = append(d.Movements, s.movements[a.Number]...)
	}
	sort.Slice(d.Accounts, func(i, j int) bool { return d.Accounts[i].Number < d.Accounts[j].Number })
	sortOldestFirst(d.Movements)
	for _, c := range s.cards {
		d.Cards = append(d.Cards, c)
	}
	sort.Slice(d.Cards, func(i, j int) bool { return d.Cards[i].Number < d.Cards[j].Number })
	d.Categories = append(d.Categories, s.categories...)
	return d
}
