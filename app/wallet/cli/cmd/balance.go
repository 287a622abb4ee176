package cmd

import (
	"fmt"

	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/spf13/cobra"
)

type balance struct {
	Owner   string        `json:"owner"`
	Name    string        `json:"name"`
	Balance ledger.Amount `json:"balance"`
}

type balances struct {
	LastestBlock string    `json:"lastest_block"`
	Uncommitted  int       `json:"uncommitted"`
	Balances     []balance `json:"balances"`
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "For Account:", w.PublicKey)

	var bals balances
	if err := get(fmt.Sprintf("%s/v1/balances/list/%s", url, w.PublicKey), &bals); err != nil {
		return err
	}

	if len(bals.Balances) > 0 {
		fmt.Fprintln(out, bals.Balances[0].Balance)
	}

	return nil
}
