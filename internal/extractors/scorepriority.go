package extractors

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"github.com/insightdelivered/statement-extractor/internal/coerce"
	"github.com/insightdelivered/statement-extractor/internal/engine"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/securities"
)

// ScorePriority extracts Score Priority Corp. (Just2Trade US) account
// statements. All amounts are US dollars, the CUSIP fills the WKN slot and
// dividends are printed gross with withholding on a separate line.
//
// Statement lines follow the layout
//
//	Date | Description | CUSIP | Type of Activity | Quantity Market Price | Net Settlement Amount
//
// with the year printed only once in the statement-period header, so every
// block pulls "year" from the document context.
func ScorePriority(resolver securities.Resolver) *engine.DocumentType {
	profile := coerce.EnUS

	dt := engine.NewDocumentType("Score Priority Corp. / Just2Trade US", "Score Priority").
		// John Doe STATEMENT PERIOD: September 1 - 30, 2021
		AddContextRule(`^.* STATEMENT PERIOD: .*, (?P<year>\d{4})$`)

	// Sep 15 Vanguard Index Fds 922908363 Buy 4 409.61 (1,638.44)
	// S P 500 Etf Shs
	// Sep 02 Netflix Inc 64110L106 Sell 2 566.20 1,132.39
	// Com
	dt.AddBlock(engine.Block{
		Start: `^\w{3} \d{2} .* \w{9} (Buy|Sell) [\.,\d]+ [\.,\d]+ \(?[\.,\d]+\)?$`,
		Rule: engine.Rule{
			Sections: []engine.Section{
				engine.Sect("entry",
					`^(?P<month>\w{3}) (?P<day>\d{2}) (?P<name>.*) (?P<wkn>\w{9}) (?P<type>Buy|Sell) (?P<shares>[\.,\d]+) [\.,\d]+ \(?(?P<amount>[\.,\d]+)\)?$`,
					`^(?P<nameContinued>.*)$`),
			},
			Require: []string{"month", "day", "name", "wkn", "type", "shares", "amount"},
			Context: []string{"year"},
			Build: func(v engine.Fields, ctx *engine.Context) (*models.Transaction, error) {
				date, err := statementDate(profile, v)
				if err != nil {
					return nil, err
				}
				shares, err := profile.Shares(v.Get("shares"))
				if err != nil {
					return nil, err
				}
				amount, err := profile.Amount(v.Get("amount"), money.USD)
				if err != nil {
					return nil, err
				}
				sec, err := resolver.Resolve(usdIdentity(v))
				if err != nil {
					return nil, err
				}

				typ := models.Buy
				if v.Get("type") == "Sell" {
					typ = models.Sell
				}
				return &models.Transaction{
					Type:     typ,
					Date:     date,
					Security: sec,
					Shares:   shares,
					Amount:   money.New(amount, money.USD),
				}, nil
			},
		},
	})

	// Dividends come in two shapes: with a withholding line directly after
	// the dividend line, or plain. The first shape nets the tax out of the
	// gross amount and records it as a tax sub-amount.
	//
	// Sep 17 Barrick Gold Co             14 067901108 Dividend 1.26
	// Sep 17 For Sec Withhold: Div   .25000 067901108 Foreign Withholding (0.31)
	//
	// Sep 16 Barrick Gold Co             14 067901108 Dividend 1.97
	dt.AddBlock(engine.Block{
		Start: `^\w{3} \d{2} .* [A-Z0-9]{9} (Qualified )?Dividend [\.,\d]+$`,
		Rule: engine.Rule{
			Sections: []engine.Section{
				engine.OneOf("dividend",
					engine.Sequence{
						`^(?P<month>\w{3}) (?P<day>\d{2}) (?P<name>.*) (?P<shares>[\.,\d]+) (?P<wkn>[A-Z0-9]{9}) (Qualified )?Dividend (?P<amount>[\.,\d]+)$`,
						`^\s*\w{3} \d{2} .* \w{9} (NRA Withhold|Foreign Withholding) \((?P<tax>[\.,\d]+)\)$`,
					},
					engine.Sequence{
						`^(?P<month>\w{3}) (?P<day>\d{2}) (?P<name>.*) (?P<shares>[\.,\d]+) (?P<wkn>[A-Z0-9]{9}) (Qualified )?Dividend (?P<amount>[\.,\d]+)$`,
					}),
			},
			Require: []string{"month", "day", "name", "shares", "wkn", "amount"},
			Context: []string{"year"},
			Build: func(v engine.Fields, ctx *engine.Context) (*models.Transaction, error) {
				date, err := statementDate(profile, v)
				if err != nil {
					return nil, err
				}
				shares, err := profile.Shares(v.Get("shares"))
				if err != nil {
					return nil, err
				}
				gross, err := profile.Amount(v.Get("amount"), money.USD)
				if err != nil {
					return nil, err
				}
				sec, err := resolver.Resolve(usdIdentity(v))
				if err != nil {
					return nil, err
				}

				txn := &models.Transaction{
					Type:     models.Dividend,
					Date:     date,
					Security: sec,
					Shares:   shares,
					Amount:   money.New(gross, money.USD),
				}
				if v.Has("tax") {
					tax, err := profile.Amount(v.Get("tax"), money.USD)
					if err != nil {
						return nil, err
					}
					txn.Amount = money.New(gross-tax, money.USD)
					txn.Tax = money.New(tax, money.USD)
				}
				return txn, nil
			},
		},
	})

	// Nov 05 2seventy Bio Inc 901384107 Security Journal 5
	// Common Stock
	dt.AddBlock(engine.Block{
		Start: `^\w{3} \d{2} .* \w{9} Security Journal [\.,\d]+$`,
		Rule: engine.Rule{
			Sections: []engine.Section{
				engine.Sect("journal",
					`^(?P<month>\w{3}) (?P<day>\d{2}) (?P<name>.*) (?P<wkn>\w{9}) Security Journal (?P<shares>[\.,\d]+)$`,
					`^(?P<nameContinued>.*)$`),
			},
			Context: []string{"year"},
			Build: func(v engine.Fields, ctx *engine.Context) (*models.Transaction, error) {
				date, err := statementDate(profile, v)
				if err != nil {
					return nil, err
				}
				shares, err := profile.Shares(v.Get("shares"))
				if err != nil {
					return nil, err
				}
				sec, err := resolver.Resolve(usdIdentity(v))
				if err != nil {
					return nil, err
				}

				// Pure security transfer: shares move in, no cash leg.
				return &models.Transaction{
					Type:     models.TransferIn,
					Date:     date,
					Security: sec,
					Shares:   shares,
					Amount:   money.New(0, money.USD),
				}, nil
			},
		},
	})

	// Nov 05 Ca Fee_spinoff_blue Tsvt 09609 Journal (30.00)   <-- CUSIP too short
	// Nov 15 Ca Fee_spinoff_o Onl 756109104 Journal (30.00)
	dt.AddBlock(engine.Block{
		Start: `^\w{3} \d{2} Ca Fee_spinoff.* Journal \([\.,\d]+\)$`,
		Rule: engine.Rule{
			Sections: []engine.Section{
				engine.Sect("fee",
					`^(?P<month>\w{3}) (?P<day>\d{2}) Ca Fee_spinoff.* (?P<name>.*) (?P<wkn>.*) Journal \((?P<amount>[\.,\d]+)\)$`),
			},
			Context: []string{"year"},
			Build: func(v engine.Fields, ctx *engine.Context) (*models.Transaction, error) {
				date, err := statementDate(profile, v)
				if err != nil {
					return nil, err
				}
				amount, err := profile.Amount(v.Get("amount"), money.USD)
				if err != nil {
					return nil, err
				}

				txn := &models.Transaction{
					Type:   models.Fee,
					Date:   date,
					Amount: money.New(amount, money.USD),
				}

				// Spin-off fee lines sometimes carry a truncated CUSIP.
				// The fee itself is still reported, but flagged so it is
				// never attached to a bogus instrument.
				wkn := strings.TrimSpace(v.Get("wkn"))
				if len(wkn) < 9 {
					return txn, fmt.Errorf("invalid instrument identifier for %q", strings.TrimSpace(v.Get("name")))
				}
				sec, err := resolver.Resolve(usdIdentity(v))
				if err != nil {
					return nil, err
				}
				txn.Security = sec
				return txn, nil
			},
		},
	})

	// Jun 23 Cil Allocation 58933Y105 Journal 29.98
	//  Merck & Co Inc New
	dt.AddBlock(engine.Block{
		Start: `^\w{3} \d{2} .* Allocation \w{9} Journal [\.,\d]+$`,
		Rule: engine.Rule{
			Sections: []engine.Section{
				engine.Sect("allocation",
					`^(?P<month>\w{3}) (?P<day>\d{2}) .* Allocation (?P<wkn>\w{9}) Journal (?P<amount>[\.,\d]+)$`,
					`^\s*(?P<name>.*)$`),
			},
			Context: []string{"year"},
			Build: func(v engine.Fields, ctx *engine.Context) (*models.Transaction, error) {
				date, err := statementDate(profile, v)
				if err != nil {
					return nil, err
				}
				amount, err := profile.Amount(v.Get("amount"), money.USD)
				if err != nil {
					return nil, err
				}
				sec, err := resolver.Resolve(usdIdentity(v))
				if err != nil {
					return nil, err
				}

				// Cash-in-lieu allocation: cash only, zero shares.
				return &models.Transaction{
					Type:     models.Dividend,
					Date:     date,
					Security: sec,
					Amount:   money.New(amount, money.USD),
				}, nil
			},
		},
	})

	// Dec 29 Incoming Wire Abccdd Doe Journal 71,000.00
	dt.AddBlock(engine.Block{
		Start: `^\w{3} \d{2} Incoming Wire .* [\.,\d]+$`,
		Rule: engine.Rule{
			Sections: []engine.Section{
				engine.Sect("deposit",
					`^(?P<month>\w{3}) (?P<day>\d{2}) Incoming Wire .* (?P<amount>[\.,\d]+)$`),
			},
			Context: []string{"year"},
			Build: func(v engine.Fields, ctx *engine.Context) (*models.Transaction, error) {
				date, err := statementDate(profile, v)
				if err != nil {
					return nil, err
				}
				amount, err := profile.Amount(v.Get("amount"), money.USD)
				if err != nil {
					return nil, err
				}
				return &models.Transaction{
					Type:   models.Deposit,
					Date:   date,
					Amount: money.New(amount, money.USD),
				}, nil
			},
		},
	})

	// Dec 31 .05000% 3 Days,Bal=   $71000 Credit Interest 0.30
	dt.AddBlock(engine.Block{
		Start: `^\w{3} \d{2} .* Credit Interest [\.,\d]+$`,
		Rule: engine.Rule{
			Sections: []engine.Section{
				engine.Sect("interest",
					`^(?P<month>\w{3}) (?P<day>\d{2}) .* Credit Interest (?P<amount>[\.,\d]+)$`),
			},
			Context: []string{"year"},
			Build: func(v engine.Fields, ctx *engine.Context) (*models.Transaction, error) {
				date, err := statementDate(profile, v)
				if err != nil {
					return nil, err
				}
				amount, err := profile.Amount(v.Get("amount"), money.USD)
				if err != nil {
					return nil, err
				}
				return &models.Transaction{
					Type:   models.Interest,
					Date:   date,
					Amount: money.New(amount, money.USD),
				}, nil
			},
		},
	})

	return dt
}

// statementDate composes the transaction date from the per-line day and
// month plus the statement-period year carried in the document context.
func statementDate(p coerce.Profile, v engine.Fields) (time.Time, error) {
	return p.Date(v.Get("day") + " " + v.Get("month") + " " + v.Get("year"))
}

// usdIdentity assembles the instrument identity fields for the resolver.
// Score Priority prints the CUSIP where European statements print a WKN.
func usdIdentity(v engine.Fields) securities.Identity {
	name := strings.TrimSpace(v.Get("name"))
	if cont := strings.TrimSpace(v.Get("nameContinued")); cont != "" {
		name = name + " " + cont
	}
	return securities.Identity{
		Name:     name,
		WKN:      strings.TrimSpace(v.Get("wkn")),
		Currency: money.USD,
	}
}
