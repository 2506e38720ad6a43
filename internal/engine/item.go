package engine

import "github.com/insightdelivered/statement-extractor/internal/models"

// Item wraps the outcome of one block match: a built domain transaction, a
// failure message, or both (a transaction that was assembled but flagged
// invalid by its builder). The engine never silently drops a
// detected-but-unparseable block.
type Item struct {
	Transaction *models.Transaction `json:"transaction,omitempty"`
	// Failure is the human-readable reason this match could not be turned
	// into a complete transaction. Empty on success.
	Failure string `json:"failure,omitempty"`
	// Line is the 1-based source line at which the block match started.
	Line int `json:"line"`
}

// Failed reports whether the item carries a failure instead of (or
// alongside) a complete transaction.
func (it Item) Failed() bool { return it.Failure != "" }
