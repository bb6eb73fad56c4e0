package report

import (
	"housesplit/internal/ledger"

	"github.com/shopspring/decimal"
)

// Summary is the machine-readable form of a calculation, with every amount
// rounded to cents.
type Summary struct {
	TotalExpenses float64           `json:"total_expenses"`
	TotalNights   int               `json:"total_nights"`
	CostPerNight  float64           `json:"cost_per_night"`
	Balances      []BalanceRow      `json:"balances"`
	Settlements   []SettlementRow   `json:"settlements"`
	Categories    []CategoryRow     `json:"categories"`
	Stays         map[string][]Stay `json:"stays_by_family"`
}

type BalanceRow struct {
	Family  string  `json:"family"`
	Nights  int     `json:"nights"`
	Owes    float64 `json:"owes"`
	Paid    float64 `json:"paid"`
	Balance float64 `json:"balance"`
}

type SettlementRow struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type CategoryRow struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type Stay struct {
	Member string `json:"member"`
	Nights int    `json:"nights"`
}

// NewSummary builds the Summary of r.
func NewSummary(r *ledger.Result) Summary {
	s := Summary{
		TotalExpenses: cents(r.TotalExpenses),
		TotalNights:   r.TotalNights,
		CostPerNight:  cents(r.CostPerNight),
		Balances:      make([]BalanceRow, 0, len(r.Families)),
		Settlements:   make([]SettlementRow, 0, len(r.Settlements)),
		Categories:    make([]CategoryRow, 0, len(r.CategoryTotals)),
		Stays:         make(map[string][]Stay),
	}

	for _, row := range r.Rows() {
		s.Balances = append(s.Balances, BalanceRow{
			Family:  string(row.Family),
			Nights:  row.Nights,
			Owes:    cents(row.Owes),
			Paid:    cents(row.Paid),
			Balance: cents(row.Balance),
		})
	}
	for _, t := range r.Settlements {
		s.Settlements = append(s.Settlements, SettlementRow{From: string(t.From), To: string(t.To), Amount: cents(t.Amount)})
	}
	for _, c := range r.Categories() {
		s.Categories = append(s.Categories, CategoryRow{Category: c.Name, Amount: cents(c.Amount)})
	}
	for family, stays := range r.StaysByFamily() {
		for _, st := range stays {
			s.Stays[string(family)] = append(s.Stays[string(family)], Stay{Member: string(st.Member), Nights: st.Nights})
		}
	}
	return s
}

// Balanced reports whether no payments are needed.
func (s Summary) Balanced() bool {
	return len(s.Settlements) == 0
}

func cents(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}
