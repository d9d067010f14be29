package memory

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/shopspring/decimal"
)

// Demo clients created by NewSeeded.
const (
	DemoClientCode = "C0001"
	DemoDNI        = "45781236"
	DemoAccount    = "191-45781236-0-01"

	SecondClientCode = "C0002"
	SecondDNI        = "70123456"
)

type template struct {
	day         int
	hour        int
	dir         domain.Direction
	amount      string
	description string
	mcc         string
	channel     string
}

// A month of activity for the demo client. Days past the end of a short
// month roll over, which is fine for demo data.
var demoMonth = []template{
	{1, 9, domain.DirectionCredit, "4200.00", "PAYROLL ACME SAC", "", "TRANSFER"},
	{2, 13, domain.DirectionDebit, "38.90", "POS STARBUCKS LARCOMAR", "5814", "POS"},
	{3, 19, domain.DirectionDebit, "212.40", "MARKET WONG BENAVIDES", "5411", "POS"},
	{5, 8, domain.DirectionDebit, "17.50", "UBER TRIP 8812", "4121", "ONLINE"},
	{6, 12, domain.DirectionDebit, "300.00", "ATM LARCO 201", "6011", "ATM"},
	{8, 21, domain.DirectionDebit, "44.90", "NETFLIX.COM", "4899", "ONLINE"},
	{10, 14, domain.DirectionDebit, "89.00", "FARMA PHARMACY 24H", "5912", "POS"},
	{12, 20, domain.DirectionDebit, "64.00", "PIZZA HUT JOCKEY", "5812", "POS"},
	{15, 10, domain.DirectionDebit, "120.00", "ELECTRIC LUZ DEL SUR", "4900", "ONLINE"},
	{16, 9, domain.DirectionCredit, "350.00", "TRANSFER FROM M QUISPE", "", "TRANSFER"},
	{18, 18, domain.DirectionDebit, "26.00", "CABIFY RIDE", "", "ONLINE"},
	{20, 13, domain.DirectionDebit, "15.90", "KFC SAN ISIDRO", "", "POS"},
	{22, 11, domain.DirectionDebit, "480.00", "TRANSFER TO J PEREZ", "", "TRANSFER"},
	{25, 19, domain.DirectionDebit, "156.30", "SUPER PLAZA VEA", "", "POS"},
	{27, 8, domain.DirectionDebit, "9.00", "METRO LINEA 1", "4111", "POS"},
}

// NewSeeded creates a store holding two demo clients and three months of
// movements ending at now. Movements after now are not booked.
func NewSeeded(now time.Time) *Store {
	s := New()
	must(s.AddClient(domain.Client{
		Code:          DemoClientCode,
		DNI:           DemoDNI,
		FirstNames:    "Lucia",
		LastNames:     "Ramos Vega",
		BirthDate:     civil.Date{Year: 1992, Month: 4, Day: 18},
		Email:         "lucia.ramos@example.com",
		Phone:         "+51987654321",
		MonthlyIncome: decimal.RequireFromString("4200.00"),
		CreditScore:   720,
		OnboardedAt:   civil.Date{Year: 2019, Month: 8, Day: 1},
	}))
	must(s.AddClient(domain.Client{
		Code:          SecondClientCode,
		DNI:           SecondDNI,
		FirstNames:    "Marco",
		LastNames:     "Quispe Luna",
		BirthDate:     civil.Date{Year: 1987, Month: 11, Day: 2},
		Email:         "marco.quispe@example.com",
		MonthlyIncome: decimal.RequireFromString("2800.00"),
		CreditScore:   655,
		OnboardedAt:   civil.Date{Year: 2021, Month: 3, Day: 15},
	}))

	must(s.AddAccount(domain.Account{
		Number: DemoAccount, ClientCode: DemoClientCode, Type: "SAV", Currency: "PEN",
		LedgerBalance: decimal.RequireFromString("6120.35"), AvailableBalance: decimal.RequireFromString("5980.35"),
		Status: domain.AccountActive,
	}))
	must(s.AddAccount(domain.Account{
		Number: "191-45781236-1-02", ClientCode: DemoClientCode, Type: "CHK", Currency: "USD",
		LedgerBalance: decimal.RequireFromString("812.00"), AvailableBalance: decimal.RequireFromString("812.00"),
		Status: domain.AccountActive,
	}))
	must(s.AddAccount(domain.Account{
		Number: "191-70123456-0-01", ClientCode: SecondClientCode, Type: "SAV", Currency: "PEN",
		LedgerBalance: decimal.RequireFromString("1540.00"), AvailableBalance: decimal.RequireFromString("1540.00"),
		Status: domain.AccountActive,
	}))

	expiry := civil.Date{Year: now.Year() + 3, Month: 12, Day: 31}
	must(s.AddCard(domain.Card{
		Number: "4557881234567812", LinkedAccount: DemoAccount, ClientCode: DemoClientCode,
		Type: domain.CardDebit, Brand: "VISA", Expiry: expiry, Status: domain.AccountActive,
	}))
	must(s.AddCard(domain.Card{
		Number: "5412750000004321", ClientCode: DemoClientCode,
		Type: domain.CardCredit, Brand: "MASTERCARD", Expiry: expiry, Status: domain.AccountActive,
	}))
	must(s.AddCard(domain.Card{
		Number: "4557889900001111", LinkedAccount: "191-70123456-0-01", ClientCode: SecondClientCode,
		Type: domain.CardDebit, Brand: "VISA", Expiry: expiry, Status: domain.AccountActive,
	}))

	for back := 2; back >= 0; back-- {
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -back, 0)
		for _, tpl := range demoMonth {
			ts := month.AddDate(0, 0, tpl.day-1).Add(time.Duration(tpl.hour) * time.Hour)
			if ts.After(now) {
				continue
			}
			_, err := s.AddMovement(domain.Transaction{
				AccountNumber: DemoAccount,
				Timestamp:     ts,
				Direction:     tpl.dir,
				Amount:        decimal.RequireFromString(tpl.amount),
				Currency:      "PEN",
				Description:   tpl.description,
				MCC:           tpl.mcc,
				Channel:       tpl.channel,
			})
			must(err)
		}
	}

	// The second client was last active two months ago.
	old := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -2, 3)
	for i, amount := range []string{"45.00", "120.00", "18.50"} {
		_, err := s.AddMovement(domain.Transaction{
			AccountNumber: "191-70123456-0-01",
			Timestamp:     old.Add(time.Duration(i) * 26 * time.Hour),
			Direction:     domain.DirectionDebit,
			Amount:        decimal.RequireFromString(amount),
			Currency:      "PEN",
			Description:   "RESTAURANT EL CHALAN",
			Channel:       "POS",
		})
		must(err)
	}
	return s
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("memory: seeding demo bank: %v", err))
	}
}
