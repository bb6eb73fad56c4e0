// Package report renders a calculation result as a plain-text summary or as
// a multi-section CSV document for download.
package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"housesplit/internal/core"
	"housesplit/internal/ledger"
)

const (
	ruleWidth    = 50
	balanceWidth = 54
)

// NoSettlements is shown when every family is already balanced.
const NoSettlements = "No settlements needed - all balanced!"

// Text renders the human-readable report.
func Text(r *ledger.Result) string {
	var b strings.Builder

	heading(&b, "EXPENSE SUMMARY")
	for _, c := range r.Categories() {
		fmt.Fprintf(&b, "  %-20s €%10s\n", capitalize(c.Name), core.Fixed2(c.Amount))
	}
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	fmt.Fprintf(&b, "  %-20s €%10s\n", "TOTAL", core.Fixed2(r.TotalExpenses))
	b.WriteString("\n")

	heading(&b, "EXPENSE DETAILS (by Family)")
	byFamily := r.ExpensesByFamily()
	for _, family := range sortedKeys(byFamily) {
		fmt.Fprintf(&b, "\n  %s Family:\n", family)
		var subtotal float64
		for _, e := range byFamily[family] {
			desc := ""
			if e.Description != "" {
				desc = " - " + e.Description
			}
			fmt.Fprintf(&b, "    %-15s €%10s%s\n", e.Category, core.Fixed2(e.Amount), desc)
			subtotal += e.Amount
		}
		fmt.Fprintf(&b, "    %-15s €%10s\n", "Subtotal", core.Fixed2(subtotal))
	}
	b.WriteString("\n")

	heading(&b, "STAY SUMMARY (Person-Nights)")
	stays := r.StaysByFamily()
	for _, family := range sortedKeys(stays) {
		fmt.Fprintf(&b, "\n  %s Family:\n", family)
		subtotal := 0
		for _, s := range stays[family] {
			fmt.Fprintf(&b, "    %-15s %3d nights\n", s.Member, s.Nights)
			subtotal += s.Nights
		}
		fmt.Fprintf(&b, "    %-15s %3d nights\n", "Subtotal", subtotal)
	}
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	fmt.Fprintf(&b, "  TOTAL PERSON-NIGHTS: %d\n", r.TotalNights)
	b.WriteString("\n")

	heading(&b, "BALANCE SHEET")
	fmt.Fprintf(&b, "\n  Cost per person-night: €%s\n\n", core.Fixed2(r.CostPerNight))
	fmt.Fprintf(&b, "  %-10s %8s %12s %12s %12s\n", "Family", "Nights", "Owes", "Paid", "Balance")
	b.WriteString("  " + strings.Repeat("-", balanceWidth) + "\n")
	for _, row := range r.Rows() {
		fmt.Fprintf(&b, "  %-10s %8d €%10s €%10s %s\n",
			row.Family, row.Nights, core.Fixed2(row.Owes), core.Fixed2(row.Paid), signedEuros(row.Balance))
	}
	b.WriteString("\n")

	heading(&b, "SETTLEMENTS")
	if len(r.Settlements) == 0 {
		b.WriteString("\n  " + NoSettlements)
	} else {
		b.WriteString("\n")
		for i, s := range r.Settlements {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  " + SettlementLine(s))
		}
	}
	return b.String()
}

// SettlementLine formats a transfer as "Oiler pays Adams: €25.00".
func SettlementLine(t core.Transfer) string {
	return fmt.Sprintf("%s pays %s: %s", t.From, t.To, core.Euros(t.Amount))
}

func heading(b *strings.Builder, title string) {
	rule := strings.Repeat("=", ruleWidth)
	b.WriteString(rule + "\n" + title + "\n" + rule + "\n")
}

// signedEuros right-aligns the balance with the minus sign before the euro symbol.
func signedEuros(amount float64) string {
	if amount >= 0 {
		return fmt.Sprintf("€%10s", core.Fixed2(amount))
	}
	return fmt.Sprintf("-€%9s", core.Fixed2(-amount))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func sortedKeys[V any](m map[core.FamilyName]V) []core.FamilyName {
	keys := make([]core.FamilyName, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
