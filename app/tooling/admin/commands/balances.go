package commands

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func balancesCmd() *cobra.Command {
	var url string

	cmd := cobra.Command{
		Use:   "bals [public key]",
		Short: "Print the balances held by the node",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("%s/v1/balances/list", url)
			if len(args) == 1 {
				path += "/" + args[0]
			}

			var bals struct {
				LastestBlock string `json:"lastest_block"`
				Uncommitted  int    `json:"uncommitted"`
				Balances     []struct {
					Owner   string `json:"owner"`
					Name    string `json:"name"`
					Balance string `json:"balance"`
				} `json:"balances"`
			}
			if err := get(path, &bals); err != nil {
				return fmt.Errorf("getting balances: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Latest Block: %s  Uncommitted: %d\n\n", bals.LastestBlock, bals.Uncommitted)
			for _, bal := range bals.Balances {
				fmt.Fprintf(out, "Name: %s  Balance: %s\n  Key: %s\n", bal.Name, bal.Balance, bal.Owner)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")

	return &cmd
}

// get performs a GET against the node and decodes the JSON response.
func get(url string, v any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&er)
		return fmt.Errorf("status %d: %s", resp.StatusCode, er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
