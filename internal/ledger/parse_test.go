package ledger

import (
	"testing"

	"housesplit/internal/core"
)

func TestParseFamilies(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.Membership
	}{
		{
			name: "two families",
			text: "Adams:John,Mary\nOiler:Bob",
			want: core.Membership{"John": "Adams", "Mary": "Adams", "Bob": "Oiler"},
		},
		{
			name: "trims members and drops empty tokens",
			text: "  Adams : John , ,Mary,  \n\n",
			want: core.Membership{"John": "Adams", "Mary": "Adams"},
		},
		{
			name: "splits on first colon only",
			text: "Adams:John:Jr,Mary",
			want: core.Membership{"John:Jr": "Adams", "Mary": "Adams"},
		},
		{
			name: "line without colon is skipped",
			text: "Adams John\nOiler:Bob",
			want: core.Membership{"Bob": "Oiler"},
		},
		{
			// Duplicate assignment keeps the later family. This mirrors the
			// historical behaviour and may yet become an error.
			name: "duplicate member last write wins",
			text: "Adams:John\nOiler:John",
			want: core.Membership{"John": "Oiler"},
		},
		{
			name: "empty block",
			text: "",
			want: core.Membership{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFamilies(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseFamilies() = %v, want %v", got, tt.want)
			}
			for m, f := range tt.want {
				if got[m] != f {
					t.Errorf("member %q -> %q, want %q", m, got[m], f)
				}
			}
		})
	}
}

func TestParseStays(t *testing.T) {
	got := ParseStays("John,5\nBadLine\nMary, 3 ,extra,fields\nBob,abc\nSue,2.5\r\n  Ann , 7  ")
	want := []core.StayRecord{
		{Member: "John", Nights: 5},
		{Member: "Mary", Nights: 3},
		{Member: "Ann", Nights: 7},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseStays() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stay %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseExpenses(t *testing.T) {
	got := ParseExpenses("Adams,rent,100,\nOiler,food,abc,bad\nBaker,food,20.5,Groceries, milk, eggs\nOiler,wood\nAdams,fuel, 12 ")
	want := []core.ExpenseRecord{
		{PaidBy: "Adams", Category: "rent", Amount: 100},
		{PaidBy: "Baker", Category: "food", Amount: 20.5, Description: "Groceries"},
		{PaidBy: "Adams", Category: "fuel", Amount: 12},
	}
	if len(got) != len(want) {
		t.Fatalf("ParseExpenses() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expense %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseExpensesDropsNonFiniteAmounts(t *testing.T) {
	got := ParseExpenses("Adams,rent,NaN\nAdams,rent,inf\nAdams,rent,-5,refund")
	if len(got) != 1 || got[0].Amount != -5 || got[0].Description != "refund" {
		t.Fatalf("unexpected expenses: %+v", got)
	}
}

func TestParseNumberSyntax(t *testing.T) {
	t.Run("nights", func(t *testing.T) {
		tests := []struct {
			field  string
			nights int
			ok     bool
		}{
			{"5", 5, true},
			{" +3 ", 3, true},
			{"-2", -2, true},
			{"1_000", 1000, true},
			{"1_0_0", 100, true},
			{"1__0", 0, false},
			{"_10", 0, false},
			{"10_", 0, false},
			{"0x10", 0, false},
			{"99999999999999999999", 0, false},
		}
		for _, tt := range tests {
			got := ParseStays("John," + tt.field)
			if !tt.ok {
				if len(got) != 0 {
					t.Errorf("nights %q: expected line to be dropped, got %+v", tt.field, got)
				}
				continue
			}
			if len(got) != 1 || got[0].Nights != tt.nights {
				t.Errorf("nights %q: got %+v, want %d", tt.field, got, tt.nights)
			}
		}
	})

	t.Run("amounts", func(t *testing.T) {
		tests := []struct {
			field  string
			amount float64
			ok     bool
		}{
			{"12.5", 12.5, true},
			{"1_000.5", 1000.5, true},
			{"1e3", 1000, true},
			{"-0.5", -0.5, true},
			{"0x1p4", 0, false},
			{"-0X1p4", 0, false},
			{"1__0", 0, false},
			{"10_.5", 0, false},
		}
		for _, tt := range tests {
			got := ParseExpenses("Adams,food," + tt.field)
			if !tt.ok {
				if len(got) != 0 {
					t.Errorf("amount %q: expected line to be dropped, got %+v", tt.field, got)
				}
				continue
			}
			if len(got) != 1 || got[0].Amount != tt.amount {
				t.Errorf("amount %q: got %+v, want %v", tt.field, got, tt.amount)
			}
		}
	})
}
