package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/liquiduspro/noobchain/foundation/blockchain/database"
	"github.com/liquiduspro/noobchain/foundation/blockchain/ledger"
	"github.com/liquiduspro/noobchain/foundation/blockchain/signature"
	"github.com/liquiduspro/noobchain/foundation/blockchain/wallet"
	"github.com/spf13/cobra"
)

var (
	to    string
	value string
)

// outputList serves the outputs the node returned as the wallet's view of
// the ledger.
type outputList []ledger.Output

func (ol outputList) QueryByOwner(owner string) []ledger.Output {
	return ol
}

type input struct {
	OutputID string `json:"output_id"`
}

type submitTx struct {
	From      string  `json:"from"`
	To        string  `json:"to"`
	Value     string  `json:"value"`
	Inputs    []input `json:"inputs"`
	Signature string  `json:"signature"`
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send transaction",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Public key or wallet name of the recipient.")
	sendCmd.Flags().StringVarP(&value, "value", "v", "0", "Value to send.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	w, err := loadWallet()
	if err != nil {
		return err
	}

	recipient, err := resolve(to)
	if err != nil {
		return err
	}

	amount, err := ledger.ParseAmount(value)
	if err != nil {
		return err
	}

	var outs struct {
		Outputs []ledger.Output `json:"outputs"`
	}
	if err := get(fmt.Sprintf("%s/v1/outputs/list/%s", url, w.PublicKey), &outs); err != nil {
		return err
	}

	tx, err := w.SendFunds(outputList(outs.Outputs), recipient, amount)
	if err != nil {
		return err
	}

	var resp struct {
		Status string `json:"status"`
		Seq    uint64 `json:"seq"`
	}
	if err := post(fmt.Sprintf("%s/v1/tx/submit", url), toSubmitTx(tx), &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: seq %d\n", resp.Status, resp.Seq)
	return nil
}

// resolve accepts a public key or the name of a wallet in the account path.
func resolve(recipient string) (string, error) {
	if signature.IsPublicKey(recipient) {
		return recipient, nil
	}

	if recipient == "" {
		return "", errors.New("recipient is required")
	}

	w, err := wallet.Load(filepath.Join(accountPath, recipient+keyExtenstion))
	if err != nil {
		return "", fmt.Errorf("recipient %q is not a public key or a known wallet: %w", recipient, err)
	}

	return w.PublicKey, nil
}

func toSubmitTx(tx database.Tx) submitTx {
	inputs := make([]input, len(tx.Inputs))
	for i, in := range tx.Inputs {
		inputs[i] = input{OutputID: in.OutputID}
	}

	return submitTx{
		From:      tx.From,
		To:        tx.To,
		Value:     tx.Value.String(),
		Inputs:    inputs,
		Signature: hexutil.Encode(tx.Signature),
	}
}

// =============================================================================

func get(url string, v any) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, v)
}

func post(url string, body any, v any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return decode(resp, v)
}

func decode(resp *http.Response, v any) error {
	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		json.NewDecoder(resp.Body).Decode(&er)
		return fmt.Errorf("node returned %d: %s %v", resp.StatusCode, er.Error, er.Fields)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
