package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"oceanwatch/internal/earnings"
)

var (
	simulateEarnings float64
	simulateFees     float64
	simulateShares   uint64
	simulateBlock    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-payout [account]",
	Short: "模拟一次出块收益并触发告警",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateEarnings <= 0 {
			return errors.New("--earnings 必须大于 0")
		}
		if simulateFees < 0 {
			return errors.New("--fees 不能为负")
		}

		entry := earnings.Entry{
			Time:        time.Now().UTC().Format("2006-01-02 15:04"),
			Block:       simulateBlock,
			ShareLogPct: "0%",
			ShareCount:  simulateShares,
			EarningsBTC: simulateEarnings,
			PoolFeesBTC: simulateFees,
		}
		return getApp().SimulatePayout(cmd.Context(), accountArg(args), entry)
	},
}

func init() {
	simulateCmd.Flags().Float64Var(&simulateEarnings, "earnings", 0, "模拟收益 (BTC)")
	simulateCmd.Flags().Float64Var(&simulateFees, "fees", 0, "模拟矿池费用 (BTC)")
	simulateCmd.Flags().Uint64Var(&simulateShares, "shares", 0, "模拟份额数")
	simulateCmd.Flags().StringVar(&simulateBlock, "block", "simulated", "模拟区块哈希")
}
