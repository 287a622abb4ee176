// This program performs administrative tasks for the noobchain node.
package main

import (
	"fmt"
	"os"

	"github.com/liquiduspro/noobchain/app/tooling/admin/commands"
	"github.com/liquiduspro/noobchain/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger. Output goes to stderr so the
	// commands can print their results to stdout.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	return commands.New(log, build).Execute()
}
