package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a movement from the account holder's point of view.
type Direction string

const (
	// DirectionCredit is money coming into the account.
	DirectionCredit Direction = "C"
	// DirectionDebit is money leaving the account.
	DirectionDebit Direction = "D"
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// TxID identifies a movement. Ordering is by timestamp, then by sequence number
// for movements booked in the same instant.
type TxID struct {
	Timestamp time.Time
	Seq       int64
}

// Less reports whether id sorts strictly before other.
func (id TxID) Less(other TxID) bool {
	if !id.Timestamp.Equal(other.Timestamp) {
		return id.Timestamp.Before(other.Timestamp)
	}
	return id.Seq < other.Seq
}

// String returns the cursor form "<unix-nanos>.<seq>".
func (id TxID) String() string {
	return strconv.FormatInt(id.Timestamp.UnixNano(), 10) + "." + strconv.FormatInt(id.Seq, 10)
}

// IsZero reports whether the id is unset.
func (id TxID) IsZero() bool {
	return id.Timestamp.IsZero() && id.Seq == 0
}

// ParseTxID parses the cursor form produced by TxID.String.
func ParseTxID(s string) (TxID, error) {
	nanos, seq, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return TxID{}, fmt.Errorf("%w: malformed cursor %q", ErrInvalidInput, s)
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return TxID{}, fmt.Errorf("%w: malformed cursor timestamp %q", ErrInvalidInput, s)
	}
	q, err := strconv.ParseInt(seq, 10, 64)
	if err != nil || q < 0 {
		return TxID{}, fmt.Errorf("%w: malformed cursor sequence %q", ErrInvalidInput, s)
	}
	return TxID{Timestamp: time.Unix(0, n).UTC(), Seq: q}, nil
}

// Transaction is one immutable movement recorded by the core-banking system.
type Transaction struct {
	ID            TxID
	Reference     string // core reference, e.g. "20240115103000000042"
	AccountNumber string
	CardNumber    string // empty when not a card movement
	Timestamp     time.Time
	Direction     Direction
	Amount        decimal.Decimal // always >= 0; Direction carries the sign
	Currency      string
	Description   string
	MCC           string
	Channel       string
	Counterparty  string
	Location      string
	BalanceAfter  decimal.NullDecimal
}

// IsDebit reports whether the movement takes money out of the account.
func (t Transaction) IsDebit() bool {
	return t.Direction == DirectionDebit
}

// SignedAmount returns the amount negated for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.IsDebit() {
		return t.Amount.Neg()
	}
	return t.Amount
}
