package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func transactionsCmd() *cobra.Command {
	var url string

	cmd := cobra.Command{
		Use:   "trans [public key]",
		Short: "Print the mined transactions sent or received by a key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("%s/v1/blocks/list", url)
			if len(args) == 1 {
				path += "/" + args[0]
			}

			var blocks []struct {
				Number int    `json:"number"`
				Hash   string `json:"hash"`
				Txs    []struct {
					ID       string `json:"id"`
					FromName string `json:"from_name"`
					ToName   string `json:"to_name"`
					Value    string `json:"value"`
				} `json:"txs"`
			}
			if err := get(path, &blocks); err != nil {
				return fmt.Errorf("getting transactions: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, blk := range blocks {
				fmt.Fprintf(out, "Block: %d  Hash: %s\n", blk.Number, blk.Hash)
				for _, tx := range blk.Txs {
					fmt.Fprintf(out, "  ID: %s  From: %s  To: %s  Value: %s\n", tx.ID, tx.FromName, tx.ToName, tx.Value)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")

	return &cmd
}
