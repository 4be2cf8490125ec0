package earnings

// Column labels used by the OCEAN earnings CSV export.
const (
	ColumnTime        = "Time"
	ColumnBlock       = "Block"
	ColumnShareLogPct = "Share Log %"
	ColumnShareCount  = "Share Count"
	ColumnEarnings    = "Earnings (BTC)"
	ColumnPoolFees    = "Pool Fees (BTC)"
)

// Columns lists the required header labels in canonical export order.
var Columns = []string{
	ColumnTime,
	ColumnBlock,
	ColumnShareLogPct,
	ColumnShareCount,
	ColumnEarnings,
	ColumnPoolFees,
}

// Entry is one row of the payout ledger.
//
// Time, Block and ShareLogPct are kept exactly as the pool reported them.
type Entry struct {
	Time        string
	Block       string
	ShareLogPct string
	ShareCount  uint64
	EarningsBTC float64
	PoolFeesBTC float64
}
