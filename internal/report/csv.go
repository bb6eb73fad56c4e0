package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"housesplit/internal/core"
	"housesplit/internal/ledger"
)

// CSV renders the downloadable report: balance sheet, settlements, expense
// details and stay details, each preceded by a section title line.
func CSV(r *ledger.Result) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	section := func(title string, header []string) {
		w.Flush()
		buf.WriteString(title + "\n")
		_ = w.Write(header)
	}

	section("BALANCE SHEET", []string{"Family", "Nights", "Owes", "Paid", "Balance"})
	for _, row := range r.Rows() {
		_ = w.Write([]string{
			row.Family,
			strconv.Itoa(row.Nights),
			core.Fixed2(row.Owes),
			core.Fixed2(row.Paid),
			core.Fixed2(row.Balance),
		})
	}
	w.Flush()
	buf.WriteString("\n")

	section("SETTLEMENTS", []string{"From", "To", "Amount"})
	if len(r.Settlements) == 0 {
		_ = w.Write([]string{"No settlements needed"})
	}
	for _, s := range r.Settlements {
		_ = w.Write([]string{s.From, s.To, core.Fixed2(s.Amount)})
	}
	w.Flush()
	buf.WriteString("\n")

	section("EXPENSE DETAILS", []string{"Family", "Type", "Amount", "Description"})
	expenses := append([]core.ExpenseRecord(nil), r.Expenses...)
	sort.SliceStable(expenses, func(i, j int) bool { return expenses[i].PaidBy < expenses[j].PaidBy })
	for _, e := range expenses {
		_ = w.Write([]string{e.PaidBy, e.Category, core.Fixed2(e.Amount), e.Description})
	}
	w.Flush()
	buf.WriteString("\n")

	section("STAY DETAILS", []string{"Family", "Member", "Nights"})
	type stayRow struct {
		family core.FamilyName
		member core.Member
		nights int
	}
	rows := make([]stayRow, 0, len(r.Stays))
	for _, s := range r.Stays {
		rows = append(rows, stayRow{family: r.FamilyOf(s.Member), member: s.Member, nights: s.Nights})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].family != rows[j].family {
			return rows[i].family < rows[j].family
		}
		if rows[i].member != rows[j].member {
			return rows[i].member < rows[j].member
		}
		return rows[i].nights < rows[j].nights
	})
	for _, row := range rows {
		_ = w.Write([]string{row.family, row.member, strconv.Itoa(row.nights)})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write csv report: %w", err)
	}
	return buf.String(), nil
}
