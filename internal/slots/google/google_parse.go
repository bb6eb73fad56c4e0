package google

import (
	"fmt"
	"strings"

	"housesplit/internal/core"
	"housesplit/internal/slots"
)

// blocksFromValues converts the A1:A3 matrix returned by the Sheets API into
// blocks. Fewer than three rows means nothing usable has been saved; an
// empty row stands for an empty block.
func blocksFromValues(values [][]interface{}) (core.Blocks, error) {
	if len(values) < 3 {
		return core.Blocks{}, slots.ErrNoSavedData
	}
	return core.Blocks{
		Families: firstCell(values[0]),
		Stays:    firstCell(values[1]),
		Expenses: firstCell(values[2]),
	}, nil
}

func valuesFromBlocks(b core.Blocks) [][]interface{} {
	return [][]interface{}{{b.Families}, {b.Stays}, {b.Expenses}}
}

func firstCell(row []interface{}) string {
	if len(row) == 0 || row[0] == nil {
		return ""
	}
	return strings.TrimRight(fmt.Sprint(row[0]), "\n")
}
