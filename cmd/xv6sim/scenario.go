package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/rhit-seilerar/xv6go/internal/kernel/proc"
	"github.com/rhit-seilerar/xv6go/internal/kernel/signal"
)

// scenarioResult is what a scenario reports once it settles or times out.
type scenarioResult struct {
	pass   bool
	detail string
}

// scenarios mirrors the kernel's six end-to-end behavioral scenarios,
// re-expressed against the exported proc/signal API (the package's own
// _test.go files exercise the same behavior as Go tests; this gives the
// CLI an equivalent standalone replay for manual/demo use).
var scenarios = map[string]func(log *logrus.Entry) scenarioResult{
	"self-kill":       scenarioSelfKill,
	"kill-child":      scenarioKillChild,
	"self-message":    scenarioSelfMessage,
	"repeating-alarm": scenarioRepeatingAlarm,
	"fork-wait":       scenarioForkWait,
	"full-queue":      scenarioFullQueue,
}

type scenarioCmd struct{}

func (*scenarioCmd) Name() string     { return "scenario" }
func (*scenarioCmd) Synopsis() string { return "replay one of the kernel's end-to-end scenarios" }
func (*scenarioCmd) Usage() string {
	names := scenarioNames()
	return fmt.Sprintf("scenario <name>\n  Available scenarios: %v\n", names)
}
func (*scenarioCmd) SetFlags(*flag.FlagSet) {}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c *scenarioCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	log, _ := args[0].(*logrus.Logger)
	if f.NArg() != 1 {
		fmt.Println(c.Usage())
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)
	run, ok := scenarios[name]
	if !ok {
		fmt.Printf("unknown scenario %q; available: %v\n", name, scenarioNames())
		return subcommands.ExitUsageError
	}

	result := run(log.WithField("scenario", name))
	if result.pass {
		fmt.Printf("PASS: %s\n", result.detail)
		return subcommands.ExitSuccess
	}
	fmt.Printf("FAIL: %s\n", result.detail)
	return subcommands.ExitFailure
}

func newScenarioTable(log *logrus.Entry) (*proc.Table, context.CancelFunc) {
	tbl := proc.NewTable(proc.TableConfig{NPROC: 16}, log)
	ctx, cancel := context.WithCancel(context.Background())
	go tbl.RunScheduler(ctx, 2, time.Millisecond)
	return tbl, cancel
}

func scenarioSelfKill(log *logrus.Entry) scenarioResult {
	tbl, cancel := newScenarioTable(log)
	defer cancel()
	reaped := make(chan int, 1)

	tbl.Boot(func(sc *proc.Syscalls) {
		sc.Fork(func(csc *proc.Syscalls) {
			csc.SendSignal(signal.Value{Type: signal.Kill, SenderPID: csc.PID()}, csc.PID())
			csc.SleepTicks(1000)
			csc.Exit(99)
		})
		_, status, err := sc.Wait()
		if err == nil {
			reaped <- status
		}
	})

	select {
	case status := <-reaped:
		if status == -1 {
			return scenarioResult{true, "child never printed its post-sleep message; reaped with status -1"}
		}
		return scenarioResult{false, fmt.Sprintf("child exit status = %d, want -1", status)}
	case <-time.After(2 * time.Second):
		return scenarioResult{false, "timed out waiting for the child to be reaped"}
	}
}

func scenarioKillChild(log *logrus.Entry) scenarioResult {
	tbl, cancel := newScenarioTable(log)
	defer cancel()
	reaped := make(chan struct{})
	alive := make(chan struct{}, 1)

	tbl.Boot(func(sc *proc.Syscalls) {
		childPID, _ := sc.Fork(func(csc *proc.Syscalls) {
			csc.SleepTicks(2000)
			alive <- struct{}{}
			csc.Exit(0)
		})
		sc.SendSignal(signal.Value{Type: signal.Kill, SenderPID: sc.PID()}, childPID)
		sc.Wait()
		close(reaped)
	})

	select {
	case <-reaped:
	case <-time.After(2 * time.Second):
		return scenarioResult{false, "timed out waiting for the child to be reaped"}
	}
	select {
	case <-alive:
		return scenarioResult{false, `child printed "alive"; it should have been killed first`}
	default:
		return scenarioResult{true, `child exited before sleep completed; "alive" never printed`}
	}
}

func scenarioSelfMessage(log *logrus.Entry) scenarioResult {
	tbl, cancel := newScenarioTable(log)
	defer cancel()
	received := make(chan signal.Value, 1)

	tbl.Boot(func(sc *proc.Syscalls) {
		sc.SetSignalHandler(signal.Message, signal.Disposition{
			Kind: signal.User,
			Handler: func(ctx signal.Context, v signal.Value) int {
				received <- v
				return 0
			},
		})
		sc.SendSignal(signal.Value{Type: signal.Message, SenderPID: sc.PID(), Payload: 509}, sc.PID())
		sc.SleepTicks(20)
	})

	select {
	case v := <-received:
		if v.Payload != 509 {
			return scenarioResult{false, fmt.Sprintf("handler payload = %d, want 509", v.Payload)}
		}
		return scenarioResult{true, fmt.Sprintf("handler observed message from pid %d: %d", v.SenderPID, v.Payload)}
	case <-time.After(2 * time.Second):
		return scenarioResult{false, "handler never dispatched"}
	}
}

func scenarioRepeatingAlarm(log *logrus.Entry) scenarioResult {
	tbl, cancel := newScenarioTable(log)
	defer cancel()
	fires := make(chan struct{}, 32)

	tbl.Boot(func(sc *proc.Syscalls) {
		sc.SetSignalHandler(signal.Alarm, signal.Disposition{
			Kind: signal.User,
			Handler: func(ctx signal.Context, v signal.Value) int {
				fires <- struct{}{}
				ctx.Alarm(1)
				return 0
			},
		})
		sc.Alarm(1)
		sc.SleepTicks(1000)
	})

	count := 0
	deadline := time.After(3 * time.Second)
	for count < 3 {
		select {
		case <-fires:
			count++
		case <-deadline:
			return scenarioResult{false, fmt.Sprintf("alarm fired only %d times in 3s, want at least 3", count)}
		}
	}
	return scenarioResult{true, fmt.Sprintf("alarm fired at least %d times", count)}
}

func scenarioForkWait(log *logrus.Entry) scenarioResult {
	tbl, cancel := newScenarioTable(log)
	defer cancel()
	result := make(chan [2]int, 1)

	tbl.Boot(func(sc *proc.Syscalls) {
		childPID, _ := sc.Fork(func(csc *proc.Syscalls) {
			csc.Exit(42)
		})
		pid, status, err := sc.Wait()
		if err == nil {
			result <- [2]int{pid, status}
		}
		_ = childPID
	})

	select {
	case r := <-result:
		if r[1] != 42 {
			return scenarioResult{false, fmt.Sprintf("wait status = %d, want 42", r[1])}
		}
		return scenarioResult{true, fmt.Sprintf("wait returned pid %d, status 42", r[0])}
	case <-time.After(2 * time.Second):
		return scenarioResult{false, "timed out waiting for fork/wait to settle"}
	}
}

func scenarioFullQueue(log *logrus.Entry) scenarioResult {
	tbl, cancel := newScenarioTable(log)
	defer cancel()
	settled := make(chan int, 1)

	tbl.Boot(func(sc *proc.Syscalls) {
		accepted := 0
		for {
			if err := sc.SendSignal(signal.Value{Type: signal.Alarm, SenderPID: sc.PID()}, sc.PID()); err != nil {
				break
			}
			accepted++
		}
		settled <- accepted
	})

	select {
	case accepted := <-settled:
		if accepted != signal.MaxSignals-1 {
			return scenarioResult{false, fmt.Sprintf("accepted %d signals, want %d", accepted, signal.MaxSignals-1)}
		}
		return scenarioResult{true, fmt.Sprintf("accepted exactly %d signals before the queue refused", accepted)}
	case <-time.After(2 * time.Second):
		return scenarioResult{false, "timed out measuring queue capacity"}
	}
}
