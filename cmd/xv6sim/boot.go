package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/rhit-seilerar/xv6go/internal/kernel/proc"
	"github.com/rhit-seilerar/xv6go/internal/kernelconfig"
)

type bootCmd struct {
	configPath string
	timeout    time.Duration
}

func (*bootCmd) Name() string     { return "boot" }
func (*bootCmd) Synopsis() string { return "boot the kernel and run a small demo workload" }
func (*bootCmd) Usage() string {
	return "boot [-config path] [-timeout duration]\n  Runs the scheduler across NCPU goroutines, printing a procdump when the demo's processes have all exited or the timeout fires.\n"
}

func (c *bootCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "path to a TOML kernelconfig file (defaults compiled in if empty)")
	f.DurationVar(&c.timeout, "timeout", 5*time.Second, "stop the scheduler after this long regardless of workload completion")
}

func (c *bootCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	log, _ := args[0].(*logrus.Logger)
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}

	tbl := proc.NewTable(proc.TableConfig{NPROC: cfg.NPROC, TicksPerSecond: uint64(cfg.TicksPerSecond)}, log.WithField("component", "proc"))
	done := make(chan struct{})
	tbl.Boot(demoInit(done))

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- tbl.RunScheduler(runCtx, cfg.NCPU, cfg.TickPeriod.Duration) }()

	select {
	case <-done:
		cancel()
		<-errCh
	case <-runCtx.Done():
	}

	fmt.Print(tbl.ProcDump())
	return subcommands.ExitSuccess
}

func loadConfig(path string) (kernelconfig.Config, error) {
	if path == "" {
		return kernelconfig.Default(), nil
	}
	cfg, err := kernelconfig.Load(path)
	if err != nil {
		return kernelconfig.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return kernelconfig.Config{}, err
	}
	return cfg, nil
}

// demoInit builds the boot subcommand's canned workload: a handful of
// worker children that sleep briefly and exit with distinct statuses, and
// a parent that reaps each one before signaling done.
func demoInit(done chan struct{}) proc.Program {
	return func(sc *proc.Syscalls) {
		const workers = 3
		for i := 0; i < workers; i++ {
			status := i + 1
			sc.Fork(func(csc *proc.Syscalls) {
				csc.SleepTicks(uint64(10 * (status)))
				csc.Exit(status)
			})
		}
		for i := 0; i < workers; i++ {
			sc.Wait()
		}
		close(done)
	}
}
