// Package models defines the domain transaction records materialized by
// extractor rule builders. The engine constructs these but never persists
// them; that is the caller's job.
package models

import (
	"time"

	"github.com/Rhymond/go-money"

	"github.com/insightdelivered/statement-extractor/internal/securities"
)

// Type classifies an extracted transaction.
type Type string

const (
	Buy         Type = "BUY"
	Sell        Type = "SELL"
	Dividend    Type = "DIVIDEND"
	Deposit     Type = "DEPOSIT"
	Interest    Type = "INTEREST"
	Fee         Type = "FEE"
	TransferIn  Type = "TRANSFER_IN"
	TransferOut Type = "TRANSFER_OUT"
)

// Transaction is one extracted financial event. Amount is the net settled
// value in minor currency units; Tax and Fee, when present, record
// sub-amounts already netted out of (or charged alongside) Amount per the
// institution's convention. Zero-amount transfers and zero-share cash
// events are both legal.
type Transaction struct {
	Type     Type                 `json:"type"`
	Date     time.Time            `json:"date"`
	Security *securities.Security `json:"security,omitempty"`
	// Shares is a fixed-point count scaled by coerce.SharesScale.
	Shares int64        `json:"shares"`
	Amount *money.Money `json:"amount,omitempty"`
	Tax    *money.Money `json:"tax,omitempty"`
	Fee    *money.Money `json:"fee,omitempty"`
	Note   string       `json:"note,omitempty"`
}

// AmountMinor returns the amount in minor units, 0 when unset.
func (t *Transaction) AmountMinor() int64 {
	if t == nil || t.Amount == nil {
		return 0
	}
	return t.Amount.Amount()
}

// CurrencyCode returns the ISO-4217 code of the amount, "" when unset.
func (t *Transaction) CurrencyCode() string {
	if t == nil || t.Amount == nil {
		return ""
	}
	return t.Amount.Currency().Code
}

// SecurityName returns the resolved instrument name, "" when none.
func (t *Transaction) SecurityName() string {
	if t == nil || t.Security == nil {
		return ""
	}
	return t.Security.Name
}
