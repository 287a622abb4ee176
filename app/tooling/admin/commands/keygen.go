package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/liquiduspro/noobchain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func keygenCmd(log *zap.SugaredLogger) *cobra.Command {
	var folder string

	cmd := cobra.Command{
		Use:   "keygen <name>",
		Short: "Generate a wallet key in the accounts folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(folder, args[0]+".ecdsa")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("key %s already exists", path)
			}

			w, err := wallet.New()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(folder, 0755); err != nil {
				return err
			}

			if err := w.Save(path); err != nil {
				return err
			}

			log.Infow("keygen", "path", path)
			fmt.Fprintln(cmd.OutOrStdout(), w.PublicKey)

			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")

	return &cmd
}
