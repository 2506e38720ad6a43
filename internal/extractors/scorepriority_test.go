package extractors

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/engine"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/securities"
)

// countingResolver wraps the in-memory resolver so tests can assert how
// often the engine reached out for an instrument.
type countingResolver struct {
	inner *securities.MemoryResolver
	calls int
}

func (r *countingResolver) Resolve(identity securities.Identity) (*securities.Security, error) {
	r.calls++
	return r.inner.Resolve(identity)
}

func newTestRegistry() (*engine.Registry, *countingResolver) {
	resolver := &countingResolver{inner: securities.NewMemoryResolver()}
	r := engine.NewRegistry()
	r.Add(ScorePriority(resolver))
	return r, resolver
}

const statementHeader = `Score Priority Corp.
John Doe STATEMENT PERIOD: September 1 - 30, 2021
Date | Effective Description | CUSIP | Type of Activity | Quantity Market Price | Net Settlement Amount
`

func extract(t *testing.T, text string) []engine.Item {
	t.Helper()
	registry, _ := newTestRegistry()
	items, err := registry.Extract(engine.NewDocument(text))
	require.NoError(t, err)
	return items
}

func TestBuy(t *testing.T) {
	items := extract(t, statementHeader+
		`Sep 15 Vanguard Index Fds 922908363 Buy 4 409.61 (1,638.44)
S P 500 Etf Shs
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, models.Buy, txn.Type)
	assert.Equal(t, time.Date(2021, time.September, 15, 0, 0, 0, 0, time.UTC), txn.Date)
	assert.Equal(t, int64(400000000), txn.Shares)
	assert.Equal(t, int64(163844), txn.AmountMinor())
	assert.Equal(t, "USD", txn.CurrencyCode())
	require.NotNil(t, txn.Security)
	assert.Equal(t, "Vanguard Index Fds S P 500 Etf Shs", txn.Security.Name)
	assert.Equal(t, "922908363", txn.Security.WKN)
}

func TestSell(t *testing.T) {
	items := extract(t, statementHeader+
		`Sep 02 Netflix Inc 64110L106 Sell 2 566.20 1,132.39
Com
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, models.Sell, txn.Type)
	assert.Equal(t, int64(200000000), txn.Shares)
	assert.Equal(t, int64(113239), txn.AmountMinor())
	assert.Equal(t, "64110L106", txn.Security.WKN)
}

func TestDividendWithForeignWithholdingNetsTax(t *testing.T) {
	items := extract(t, statementHeader+
		`Sep 16 Barrick Gold Co 14 067901108 Dividend 1.97
Sep 17 For Sec Withhold: Div .25000 067901108 Foreign Withholding (0.31)
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, models.Dividend, txn.Type)
	assert.Equal(t, int64(166), txn.AmountMinor(), "gross 197 minus withheld 31")
	require.NotNil(t, txn.Tax)
	assert.Equal(t, int64(31), txn.Tax.Amount())
	assert.Equal(t, int64(1400000000), txn.Shares)
}

func TestDividendWithoutWithholdingStaysGross(t *testing.T) {
	items := extract(t, statementHeader+
		`Sep 16 Barrick Gold Co 14 067901108 Dividend 1.97
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, int64(197), txn.AmountMinor())
	assert.Nil(t, txn.Tax)
}

func TestDividendWithNRAWithholding(t *testing.T) {
	items := extract(t, statementHeader+
		`Sep 15 Realty Income C 22 756109104 Dividend 5.18
 Sep 15 Nra Withhold: Dividend 756109104 NRA Withhold (1.55)
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)
	assert.Equal(t, int64(518-155), items[0].Transaction.AmountMinor())
}

func TestQualifiedDividend(t *testing.T) {
	items := extract(t, statementHeader+
		`Sep 15 Tyson Foods Inc 6 902494103 Qualified Dividend 2.67
Sep 15 Nra Withhold: Dividend 902494103 NRA Withhold (0.80)
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, int64(267-80), txn.AmountMinor())
	assert.Equal(t, "902494103", txn.Security.WKN, "the CUSIP, not the word Qualified")
	assert.Equal(t, int64(600000000), txn.Shares)
}

func TestSecurityJournalIsZeroAmountTransfer(t *testing.T) {
	items := extract(t, statementHeader+
		`Nov 05 2seventy Bio Inc 901384107 Security Journal 5
Common Stock
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, models.TransferIn, txn.Type)
	assert.Equal(t, int64(500000000), txn.Shares)
	assert.Equal(t, int64(0), txn.AmountMinor(), "pure security transfer has no cash leg")
	assert.Equal(t, time.Date(2021, time.November, 5, 0, 0, 0, 0, time.UTC), txn.Date)
}

func TestSpinoffFeeWithShortCUSIPFailsWithoutResolving(t *testing.T) {
	registry, resolver := newTestRegistry()
	items, err := registry.Extract(engine.NewDocument(statementHeader +
		`Nov 05 Ca Fee_spinoff_blue Tsvt 09609 Journal (30.00)
`))
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.True(t, items[0].Failed())
	assert.Contains(t, items[0].Failure, "Tsvt", "failure names the descriptive name field")
	assert.Zero(t, resolver.calls, "resolver must not be called for an invalid identifier")

	// The fee itself is still reported, flagged, with no security attached.
	require.NotNil(t, items[0].Transaction)
	assert.Equal(t, models.Fee, items[0].Transaction.Type)
	assert.Equal(t, int64(3000), items[0].Transaction.AmountMinor())
	assert.Nil(t, items[0].Transaction.Security)
}

func TestSpinoffFeeWithValidCUSIP(t *testing.T) {
	registry, resolver := newTestRegistry()
	items, err := registry.Extract(engine.NewDocument(statementHeader +
		`Nov 15 Ca Fee_spinoff_o Onl 756109104 Journal (30.00)
`))
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.False(t, items[0].Failed(), items[0].Failure)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, "756109104", items[0].Transaction.Security.WKN)
}

func TestCashAllocation(t *testing.T) {
	items := extract(t, statementHeader+
		`Jun 23 Cil Allocation 58933Y105 Journal 29.98
 Merck & Co Inc New
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, models.Dividend, txn.Type)
	assert.Equal(t, int64(0), txn.Shares, "cash-only allocation")
	assert.Equal(t, int64(2998), txn.AmountMinor())
	assert.Equal(t, "Merck & Co Inc New", txn.Security.Name)
}

func TestIncomingWireDeposit(t *testing.T) {
	items := extract(t, statementHeader+
		`Dec 29 Incoming Wire Abccdd Doe Journal 71,000.00
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, models.Deposit, txn.Type)
	assert.Equal(t, int64(7100000), txn.AmountMinor())
	assert.Nil(t, txn.Security)
}

func TestCreditInterest(t *testing.T) {
	items := extract(t, statementHeader+
		`Dec 31 .05000% 3 Days,Bal=   $71000 Credit Interest 0.30
`)

	require.Len(t, items, 1)
	require.False(t, items[0].Failed(), items[0].Failure)

	txn := items[0].Transaction
	assert.Equal(t, models.Interest, txn.Type)
	assert.Equal(t, int64(30), txn.AmountMinor())
}

func TestFullStatement(t *testing.T) {
	text := statementHeader +
		`Sep 02 Netflix Inc 64110L106 Sell 2 566.20 1,132.39
Com
Sep 15 Vanguard Index Fds 922908363 Buy 4 409.61 (1,638.44)
S P 500 Etf Shs
Sep 16 Barrick Gold Co 14 067901108 Dividend 1.97
Sep 17 For Sec Withhold: Div .25000 067901108 Foreign Withholding (0.31)
Sep 15 Realty Income C 22 756109104 Dividend 5.18
 Sep 15 Nra Withhold: Dividend 756109104 NRA Withhold (1.55)
Nov 05 2seventy Bio Inc 901384107 Security Journal 5
Common Stock
Nov 05 Ca Fee_spinoff_blue Tsvt 09609 Journal (30.00)
Jun 23 Cil Allocation 58933Y105 Journal 29.98
 Merck & Co Inc New
Dec 29 Incoming Wire Abccdd Doe Journal 71,000.00
Dec 31 .05000% 3 Days,Bal=   $71000 Credit Interest 0.30
`

	registry, _ := newTestRegistry()
	doc := engine.NewDocument(text)

	items, err := registry.Extract(doc)
	require.NoError(t, err)
	require.Len(t, items, 9)

	// Items arrive in block registration order: buy/sell, dividends,
	// security journal, fees, allocation, deposit, interest.
	types := make([]models.Type, 0, len(items))
	for _, item := range items {
		require.NotNil(t, item.Transaction)
		types = append(types, item.Transaction.Type)
	}
	assert.Equal(t, []models.Type{
		models.Sell, models.Buy,
		models.Dividend, models.Dividend,
		models.TransferIn,
		models.Fee,
		models.Dividend,
		models.Deposit,
		models.Interest,
	}, types)

	failed := 0
	for _, item := range items {
		if item.Failed() {
			failed++
		}
	}
	assert.Equal(t, 1, failed, "only the short-CUSIP fee is flagged")

	// Determinism: a second run over the same input is byte-identical.
	again, err := registry.Extract(doc)
	require.NoError(t, err)
	a, err := json.Marshal(items)
	require.NoError(t, err)
	b, err := json.Marshal(again)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestUnrecognizedStatement(t *testing.T) {
	registry, resolver := newTestRegistry()
	_, err := registry.Extract(engine.NewDocument("Some Other Broker\nACCOUNT STATEMENT\n"))

	var unrec *engine.UnrecognizedDocumentError
	require.ErrorAs(t, err, &unrec)
	assert.Zero(t, resolver.calls)
}

func TestMissingStatementYearAborts(t *testing.T) {
	registry, _ := newTestRegistry()
	_, err := registry.Extract(engine.NewDocument(
		"Score Priority Corp.\nSep 16 Barrick Gold Co 14 067901108 Dividend 1.97\n"))

	var missing *engine.MissingContextError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "year", missing.Key)
}
