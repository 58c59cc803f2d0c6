// Package layout computes page-break shifts for a vertically flowed exam
// paper so that no block straddles a page boundary.
package layout

import "fmt"

// Default page geometry in document pixels (A4 at 96 dpi, rounded down).
const (
	DefaultPageHeight     = 1120
	DefaultPagePadding    = 30
	DefaultClosingPadding = 20
)

// Config holds the page geometry.
type Config struct {
	// PageHeight is the height of one printed page.
	PageHeight float64 `yaml:"page_height"`

	// PagePadding is the clearance left after a block is pushed to the
	// next page.
	PagePadding float64 `yaml:"page_padding"`

	// ClosingPadding is added below the closing element when sizing the
	// flow for export.
	ClosingPadding float64 `yaml:"closing_padding"`
}

// DefaultConfig returns the standard page geometry.
func DefaultConfig() Config {
	return Config{
		PageHeight:     DefaultPageHeight,
		PagePadding:    DefaultPagePadding,
		ClosingPadding: DefaultClosingPadding,
	}
}

// Validate checks that the geometry is usable.
func (c Config) Validate() error {
	if c.PageHeight <= 0 {
		return fmt.Errorf("page height must be positive, got %v", c.PageHeight)
	}
	if c.PagePadding < 0 {
		return fmt.Errorf("page padding must not be negative, got %v", c.PagePadding)
	}
	if c.ClosingPadding < 0 {
		return fmt.Errorf("closing padding must not be negative, got %v", c.ClosingPadding)
	}
	return nil
}
