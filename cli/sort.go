package cli

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/okrahn/ledgerhand/journal"
	"github.com/okrahn/ledgerhand/telemetry"
)

type SortCmd struct {
	File string `help:"Journal file to sort." required:"" type:"existingfile"`
}

func (cmd *SortCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := globals.telemetryContext(ctx)
	defer report()

	timer := telemetry.StartTimer(runCtx, fmt.Sprintf("sort %s", filepath.Base(cmd.File)))
	defer timer.End()

	readTimer := timer.Child("read journal")
	f, err := journal.Read(cmd.File, "")
	readTimer.End()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	f.Sort()

	writeTimer := timer.Child("write journal")
	err = f.Write()
	writeTimer.End()
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("sorted %d entries in %s", len(f.Things), cmd.File))
	return nil
}
