package source

import (
	"fmt"
	"time"

	"github.com/theirongolddev/opdusage/internal/model"
)

const maxRowErrors = 20

// RowError describes a data row that could not be parsed.
// Line is 1-based and counts the header as line 1.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

// Table is the raw input after header resolution and cell parsing.
type Table struct {
	Location    string
	Rows        []model.RawRecord
	TotalRows   int
	ParseErrors int
	Errors      []RowError // first few parse errors, for diagnostics

	// Zero for remote sources.
	ModTime time.Time
	Size    int64
}
