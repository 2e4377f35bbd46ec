// Command xv6sim runs the process/signal kernel simulation: boot it and
// let it run, dump a snapshot of a running table, or replay one of its
// end-to-end scenarios and report pass/fail. Modeled on a
// subcommands-based container-runtime CLI, trading its container
// surface for this kernel's boot/procdump/scenario operations.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&bootCmd{}, "")
	subcommands.Register(&procdumpCmd{}, "")
	subcommands.Register(&scenarioCmd{}, "")

	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	os.Exit(int(subcommands.Execute(context.Background(), log)))
}
