// This program is a wallet for sending funds through a noobchain node.
package main

import "github.com/liquiduspro/noobchain/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
