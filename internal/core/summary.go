package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount float64
}

// FamilyRow is one line of the balance sheet.
type FamilyRow struct {
	Family  FamilyName
	Nights  int
	Owes    float64
	Paid    float64
	Balance float64
}
