package ledger

import (
	"sort"

	"housesplit/internal/core"
)

// position is an outstanding debt or credit, always stored as a positive amount.
type position struct {
	family core.FamilyName
	amount float64
}

// Settle computes transfers that bring every balance to zero within
// core.Tolerance, using a greedy match of the largest debtor with the
// largest creditor.
//
// Algorithm:
// - Families within tolerance of zero take no part.
// - Debtors and creditors are sorted once by amount descending, then name.
// - The two queue heads are matched for min(debt, credit); a head is popped
//   once its remainder drops under tolerance. Queues are never re-sorted.
// - Residue under tolerance is discarded.
func Settle(balances map[core.FamilyName]float64) []core.Transfer {
	var debtors, creditors []position
	for family, balance := range balances {
		switch {
		case balance < -core.Tolerance:
			debtors = append(debtors, position{family: family, amount: -balance})
		case balance > core.Tolerance:
			creditors = append(creditors, position{family: family, amount: balance})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	var transfers []core.Transfer
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor, creditor := &debtors[0], &creditors[0]

		amount := min(debtor.amount, creditor.amount)
		if amount > core.Tolerance {
			transfers = append(transfers, core.Transfer{
				From:   debtor.family,
				To:     creditor.family,
				Amount: amount,
			})
		}

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount < core.Tolerance {
			debtors = debtors[1:]
		}
		if creditor.amount < core.Tolerance {
			creditors = creditors[1:]
		}
	}
	return transfers
}

func sortPositions(ps []position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].amount != ps[j].amount {
			return ps[i].amount > ps[j].amount
		}
		return ps[i].family < ps[j].family
	})
}
