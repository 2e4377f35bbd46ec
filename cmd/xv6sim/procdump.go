package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/rhit-seilerar/xv6go/internal/kernel/proc"
)

type procdumpCmd struct {
	configPath string
}

func (*procdumpCmd) Name() string     { return "procdump" }
func (*procdumpCmd) Synopsis() string { return "boot, let the demo workload settle briefly, and print a one-shot table dump" }
func (*procdumpCmd) Usage() string {
	return "procdump [-config path]\n"
}

func (c *procdumpCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to a TOML kernelconfig file (defaults compiled in if empty)")
}

func (c *procdumpCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	log, _ := args[0].(*logrus.Logger)
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}

	tbl := proc.NewTable(proc.TableConfig{NPROC: cfg.NPROC, TicksPerSecond: uint64(cfg.TicksPerSecond)}, log.WithField("component", "proc"))
	done := make(chan struct{})
	tbl.Boot(demoInit(done))

	runCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	go tbl.RunScheduler(runCtx, cfg.NCPU, cfg.TickPeriod.Duration)
	<-runCtx.Done()

	fmt.Print(tbl.ProcDump())
	return subcommands.ExitSuccess
}
