package cli

import (
	"github.com/alecthomas/kong"

	"github.com/okrahn/ledgerhand/reconcile"
)

type ReconcileCmd struct {
	File      string `help:"Journal file to reconcile." required:"" type:"existingfile"`
	Account   string `help:"Account name fragment selecting the account to reconcile." arg:""`
	CacheFile string `help:"Statement cache location (defaults to ~/.ledgerhand.yaml)."`
}

func (cmd *ReconcileCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, report := globals.telemetryContext(ctx)
	defer report()

	var opts []reconcile.Option
	if cmd.CacheFile != "" {
		opts = append(opts, reconcile.WithCachePath(cmd.CacheFile))
	}

	session, err := reconcile.NewSession(runCtx, cmd.File, cmd.Account, opts...)
	if err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	if err := session.Run(runCtx); err != nil {
		printError(ctx.Stderr, err.Error())
		return NewCommandError(-1)
	}

	return nil
}
