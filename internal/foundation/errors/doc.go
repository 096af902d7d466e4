// Package errors provides the classified error primitives used across agentboot.
//
// Every failure the bootstrapper can recognize is a ClassifiedError carrying a
// category, a severity, a retry strategy, an optional remediation hint and
// structured context. CLIErrorAdapter turns those into stderr text and an
// exit code:
//
//	err := errors.RemoteStateError("remote has no branches").
//		ForRepository("source").
//		WithHint("push an initial main branch").
//		Build()
package errors
