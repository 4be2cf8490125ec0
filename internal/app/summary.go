package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"oceanwatch/internal/earnings"
)

// Summary aggregates an account ledger.
type Summary struct {
	Entries     int
	Shares      decimal.Decimal
	EarningsBTC decimal.Decimal
	PoolFeesBTC decimal.Decimal
	NetBTC      decimal.Decimal
	Newest      string
	Oldest      string
}

// Summarize totals entries using decimal arithmetic. Entries are expected newest first.
func Summarize(entries []earnings.Entry) Summary {
	summary := Summary{
		Entries:     len(entries),
		Shares:      decimal.Zero,
		EarningsBTC: decimal.Zero,
		PoolFeesBTC: decimal.Zero,
	}
	if len(entries) == 0 {
		summary.NetBTC = decimal.Zero
		return summary
	}

	for _, entry := range entries {
		summary.Shares = summary.Shares.Add(decimal.NewFromBigInt(new(big.Int).SetUint64(entry.ShareCount), 0))
		summary.EarningsBTC = summary.EarningsBTC.Add(decimal.NewFromFloat(entry.EarningsBTC))
		summary.PoolFeesBTC = summary.PoolFeesBTC.Add(decimal.NewFromFloat(entry.PoolFeesBTC))
	}
	summary.NetBTC = summary.EarningsBTC.Sub(summary.PoolFeesBTC)
	summary.Newest = entries[0].Time
	summary.Oldest = entries[len(entries)-1].Time
	return summary
}

// Summary prints ledger totals for an account.
func (a *App) Summary(ctx context.Context, opts SummaryOptions) error {
	account, entries, err := a.fetchEntries(ctx, opts.Account)
	if err != nil {
		return err
	}

	s := Summarize(entries)
	a.Logger.Debug().Str("account", account).Int("entries", s.Entries).Msg("summarised ledger")

	fmt.Fprintf(a.Out, "Account:         %s\n", account)
	fmt.Fprintf(a.Out, "Payouts:         %d\n", s.Entries)
	if s.Entries > 0 {
		fmt.Fprintf(a.Out, "Range:           %s .. %s\n", s.Oldest, s.Newest)
	}
	fmt.Fprintf(a.Out, "Shares:          %s\n", s.Shares.String())
	fmt.Fprintf(a.Out, "Earnings (BTC):  %s\n", s.EarningsBTC.StringFixed(8))
	fmt.Fprintf(a.Out, "Pool Fees (BTC): %s\n", s.PoolFeesBTC.StringFixed(8))
	fmt.Fprintf(a.Out, "Net (BTC):       %s\n", s.NetBTC.StringFixed(8))
	return nil
}
