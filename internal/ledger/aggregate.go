package ledger

import (
	"fmt"
	"sort"

	"housesplit/internal/core"
)

// PersonNights sums the nights of every stay per family. Stays must have
// been validated; an unknown member is reported rather than guessed. A sum
// that leaves the int range returns core.ErrNightsOverflow.
func PersonNights(stays []core.StayRecord, membership core.Membership) (map[core.FamilyName]int, error) {
	out := make(map[core.FamilyName]int)
	for _, s := range stays {
		family, ok := membership[s.Member]
		if !ok {
			return nil, fmt.Errorf("person nights: %w", core.NewUnknownMemberError([]string{s.Member}))
		}
		sum, ok := addNights(out[family], s.Nights)
		if !ok {
			return nil, fmt.Errorf("person nights for %s: %w", family, core.ErrNightsOverflow)
		}
		out[family] = sum
	}
	return out, nil
}

// addNights adds b to a and reports false when the result wraps.
func addNights(a, b int) (int, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// FamilyPayments sums expense amounts per paying family.
func FamilyPayments(expenses []core.ExpenseRecord) map[core.FamilyName]float64 {
	out := make(map[core.FamilyName]float64)
	for _, e := range expenses {
		out[e.PaidBy] += e.Amount
	}
	return out
}

// CategoryTotals sums expense amounts per category.
func CategoryTotals(expenses []core.ExpenseRecord) map[string]float64 {
	out := make(map[string]float64)
	for _, e := range expenses {
		out[e.Category] += e.Amount
	}
	return out
}

// TotalExpenses sums every expense amount in input order.
func TotalExpenses(expenses []core.ExpenseRecord) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// SortedCategories returns category totals ordered by name.
func SortedCategories(totals map[string]float64) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, amount := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
