package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Sort              SortCmd              `cmd:"" help:"Sort the journal chronologically, rewriting it in place."`
	Reconcile         ReconcileCmd         `cmd:"" help:"Interactively reconcile an account against a bank statement."`
	Schedule          ScheduleCmd          `cmd:"" help:"Enter scheduled transactions into the journal through the enter-ahead horizon."`
	NextScheduledDate NextScheduledDateCmd `cmd:"" name:"next-scheduled-date" help:"Show the next date each scheduled transaction will be entered."`
}
