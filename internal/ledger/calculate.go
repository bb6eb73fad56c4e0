package ledger

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"housesplit/internal/core"
)

// Result is everything a report renderer needs about one calculation.
// It is only ever returned complete; a failed cycle yields no Result.
type Result struct {
	Membership     core.Membership
	Stays          []core.StayRecord
	Expenses       []core.ExpenseRecord
	FamilyNights   map[core.FamilyName]int
	FamilyPayments map[core.FamilyName]float64
	CategoryTotals map[string]float64
	TotalExpenses  float64
	TotalNights    int
	CostPerNight   float64
	Balances       map[core.FamilyName]float64
	Settlements    []core.Transfer
	// Families is the sorted union of families that stayed or paid.
	Families []core.FamilyName
}

// Clone returns a copy of r whose maps and slices are not shared with r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Membership = maps.Clone(r.Membership)
	c.Stays = slices.Clone(r.Stays)
	c.Expenses = slices.Clone(r.Expenses)
	c.FamilyNights = maps.Clone(r.FamilyNights)
	c.FamilyPayments = maps.Clone(r.FamilyPayments)
	c.CategoryTotals = maps.Clone(r.CategoryTotals)
	c.Balances = maps.Clone(r.Balances)
	c.Settlements = slices.Clone(r.Settlements)
	c.Families = slices.Clone(r.Families)
	return &c
}

// Calculate runs one full cycle over the raw blocks: parse, validate,
// aggregate, allocate and settle.
func Calculate(b core.Blocks) (*Result, error) {
	in := Parse(b)
	if err := Validate(in); err != nil {
		return nil, err
	}

	nights, err := PersonNights(in.Stays, in.Membership)
	if err != nil {
		return nil, err
	}
	payments := FamilyPayments(in.Expenses)

	alloc, err := ComputeBalances(nights, payments, in.Expenses)
	if err != nil {
		return nil, fmt.Errorf("compute balances: %w", err)
	}

	return &Result{
		Membership:     in.Membership,
		Stays:          in.Stays,
		Expenses:       in.Expenses,
		FamilyNights:   nights,
		FamilyPayments: payments,
		CategoryTotals: CategoryTotals(in.Expenses),
		TotalExpenses:  alloc.TotalExpenses,
		TotalNights:    alloc.TotalNights,
		CostPerNight:   alloc.CostPerNight,
		Balances:       alloc.Balances,
		Settlements:    Settle(alloc.Balances),
		Families:       unionFamilies(nights, payments),
	}, nil
}

// Rows returns the balance sheet, one row per family in name order.
func (r *Result) Rows() []core.FamilyRow {
	rows := make([]core.FamilyRow, 0, len(r.Families))
	for _, f := range r.Families {
		nights := r.FamilyNights[f]
		rows = append(rows, core.FamilyRow{
			Family:  f,
			Nights:  nights,
			Owes:    float64(nights) * r.CostPerNight,
			Paid:    r.FamilyPayments[f],
			Balance: r.Balances[f],
		})
	}
	return rows
}

// Categories returns the per-category totals in name order.
func (r *Result) Categories() []core.CategoryAmount {
	return SortedCategories(r.CategoryTotals)
}

// FamilyOf returns the family a stay member belongs to.
func (r *Result) FamilyOf(member core.Member) core.FamilyName {
	return r.Membership[member]
}

// StaysByFamily groups stays per family with members sorted by name then nights.
func (r *Result) StaysByFamily() map[core.FamilyName][]core.StayRecord {
	out := make(map[core.FamilyName][]core.StayRecord)
	for _, s := range r.Stays {
		f := r.Membership[s.Member]
		out[f] = append(out[f], s)
	}
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool {
			if list[i].Member != list[j].Member {
				return list[i].Member < list[j].Member
			}
			return list[i].Nights < list[j].Nights
		})
	}
	return out
}

// ExpensesByFamily groups expenses per paying family, keeping input order.
func (r *Result) ExpensesByFamily() map[core.FamilyName][]core.ExpenseRecord {
	out := make(map[core.FamilyName][]core.ExpenseRecord)
	for _, e := range r.Expenses {
		out[e.PaidBy] = append(out[e.PaidBy], e)
	}
	return out
}
