// Package preflight provides readiness checks for the filesystem paths and
// storage that the daemon depends on.
//
// These checks run in two contexts:
//   - The daemon runtime calls RunAll before starting components. If any
//     check fails, startup aborts instead of limping along with a dead
//     journal or an unreadable watch directory.
//   - The CLI "conveyor status" command uses individual check functions
//     (CheckDirectoryAccess, CheckJournal) to display readiness when the
//     daemon is offline.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
