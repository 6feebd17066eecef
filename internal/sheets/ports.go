package sheets

import "context"

// Realization is one executed flow flattened for the reporting mirror.
type Realization struct {
	FlowID       int64
	CommitmentID int64
	Date         string // YYYY-MM-DD
	Category     string
	Amount       string // signed decimal, e.g. "-48.00"
	Note         string
}

// Ports for outbound adapters.
type (
	// RealizationWriter appends one executed flow to the mirror and
	// returns an adapter-specific row reference.
	RealizationWriter interface {
		Append(ctx context.Context, r Realization) (rowRef string, err error)
	}
)
