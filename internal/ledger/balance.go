package ledger

import (
	"sort"

	"housesplit/internal/core"
)

// Allocation is the outcome of spreading total expenses over person-nights.
type Allocation struct {
	TotalExpenses float64
	TotalNights   int
	CostPerNight  float64
	// Balances is paid minus owed per family. Positive means the family is
	// owed money by the others.
	Balances map[core.FamilyName]float64
}

// ComputeBalances allocates the total expense amount uniformly over all
// person-nights and returns each family's signed balance. Families that only
// stayed or only paid are included with a zero default for the other side.
// It returns core.ErrNoStays when no nights were recorded and
// core.ErrNightsOverflow when the total does not fit in an int.
func ComputeBalances(nights map[core.FamilyName]int, payments map[core.FamilyName]float64, expenses []core.ExpenseRecord) (Allocation, error) {
	totalExpenses := TotalExpenses(expenses)

	var totalNights int
	for _, n := range nights {
		sum, ok := addNights(totalNights, n)
		if !ok {
			return Allocation{}, core.ErrNightsOverflow
		}
		totalNights = sum
	}
	if totalNights == 0 {
		return Allocation{}, core.ErrNoStays
	}

	costPerNight := totalExpenses / float64(totalNights)
	balances := make(map[core.FamilyName]float64, len(nights)+len(payments))
	for _, family := range unionFamilies(nights, payments) {
		owes := float64(nights[family]) * costPerNight
		balances[family] = payments[family] - owes
	}

	return Allocation{
		TotalExpenses: totalExpenses,
		TotalNights:   totalNights,
		CostPerNight:  costPerNight,
		Balances:      balances,
	}, nil
}

// unionFamilies returns every family that stayed or paid, sorted by name.
func unionFamilies(nights map[core.FamilyName]int, payments map[core.FamilyName]float64) []core.FamilyName {
	seen := make(map[core.FamilyName]struct{}, len(nights)+len(payments))
	for f := range nights {
		seen[f] = struct{}{}
	}
	for f := range payments {
		seen[f] = struct{}{}
	}
	out := make([]core.FamilyName, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
