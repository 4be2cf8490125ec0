package cli

import (
	"github.com/spf13/cobra"

	"oceanwatch/internal/app"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [account]",
	Short: "Print earnings totals for an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Summary(cmd.Context(), app.SummaryOptions{Account: accountArg(args)})
	},
}
