// Package metrics records bootstrap observations.
//
// Components receive a Recorder and default to NoopRecorder, so call sites
// never check for nil:
//
//	rec := metrics.NoopRecorder{}
//	if path != "" {
//	    rec = metrics.NewPrometheusRecorder(reg)
//	}
//
// PrometheusRecorder keeps its collectors in a private registry; WriteTextfile
// exports them in the node_exporter textfile format at the end of a run.
package metrics
