// Package git brings local repositories in line with a declared remote branch.
//
// It provides:
//   - Probe: read-only branch queries against a remote, failing open to "absent"
//   - Synchronizer: the clone / init / fetch / force-reset state machine
//   - Guidance: copy-pasteable remediation for remotes that cannot be synced yet
//   - Typed errors and classification into foundation errors
//
// Synchronization is destructive on local edits: the local branch always ends
// at exactly origin/<branch>.
package git
