// Package bootstrap orchestrates one container bootstrap: credentials and
// synchronization per repository, the network policy, the environment
// handoff, and finally the seed script and agent launch when every
// repository is ready.
//
// Only configuration-level problems end a run early. Every other failure is
// recorded per repository and the run continues to the policy step.
package bootstrap
