package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/okrahn/ledgerhand/journal"
	"github.com/okrahn/ledgerhand/schedule"
	"github.com/okrahn/ledgerhand/telemetry"
)

type ScheduleCmd struct {
	File     string `help:"Journal file to enter transactions into." required:"" type:"existingfile"`
	Schedule string `help:"Schedule file describing the recurring transactions." required:"" type:"existingfile"`
}

func (cmd *ScheduleCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := globals.telemetryContext(ctx)
	defer report()

	timer := telemetry.StartTimer(runCtx, fmt.Sprintf("schedule %s", filepath.Base(cmd.File)))
	defer timer.End()

	sched, err := schedule.Read(cmd.Schedule)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	if sched.EnterDays < 1 {
		printInfof(ctx.Stdout, "scheduling disabled (enter %d days)", sched.EnterDays)
		return nil
	}

	expandTimer := timer.Child("expand schedules")
	emitted, err := sched.Expand(journal.Today())
	expandTimer.End()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	if len(emitted) == 0 {
		printInfof(ctx.Stdout, "no scheduled transactions due")
		return nil
	}

	f, err := journal.Read(cmd.File, "")
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	f.Append(emitted...)
	f.Sort()

	if err := f.Write(); err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}
	if err := sched.Write(); err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("entered %d scheduled transaction(s) into %s", len(emitted), cmd.File))
	return nil
}

type NextScheduledDateCmd struct {
	Schedule string `help:"Schedule file to inspect." required:"" type:"existingfile"`
}

func (cmd *NextScheduledDateCmd) Run(ctx *kong.Context, globals *Globals) error {
	sched, err := schedule.Read(cmd.Schedule)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	if len(sched.Things) == 0 {
		printInfof(ctx.Stdout, "no scheduled transactions in %s", cmd.Schedule)
		return nil
	}

	for _, st := range sched.Things {
		_, _ = fmt.Fprintf(ctx.Stdout, "%s  %s\n", st.Date, st.Payee)
	}
	return nil
}
