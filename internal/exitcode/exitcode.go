// Package exitcode defines process exit codes for the biologics CLI.
package exitcode

const (
	Success      = 0
	UsageError   = 1
	DBConnError  = 2
	ResolveError = 3 // no downloadable schedule within the lookback window
	FetchError   = 4 // archive download / extraction / CSV failure
	BuildError   = 5 // combination build failed or produced zero rows
	WriteError   = 6 // transactional replace failed
)
