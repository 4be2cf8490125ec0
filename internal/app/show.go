package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
)

// Show prints the newest entries of an account ledger.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	account, entries, err := a.fetchEntries(ctx, opts.Account)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.Out, "no earnings found for %s\n", account)
		return nil
	}

	if opts.Limit > 0 {
		entries = lo.Subset(entries, 0, uint(opts.Limit))
	}

	writer := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time\tBlock\tShare Log %\tShare Count\tEarnings (BTC)\tPool Fees (BTC)")

	for _, entry := range entries {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%d\t%s\t%s\n",
			sanitizeInline(entry.Time),
			sanitizeInline(entry.Block),
			sanitizeInline(entry.ShareLogPct),
			entry.ShareCount,
			formatBTC(entry.EarningsBTC),
			formatBTC(entry.PoolFeesBTC),
		)
	}

	return writer.Flush()
}

func formatBTC(v float64) string {
	return strconv.FormatFloat(v, 'f', 8, 64)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	cleaned = strings.ReplaceAll(cleaned, "\t", " ")
	return cleaned
}
