/*
Package observability turns sequencer lifecycle hooks into logs and metrics.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	hooks := metrics.Hooks().Merge(observability.LoggingHooks(logger))
	seq := sequencer.New(sequencer.WithHooks(hooks))
*/
package observability
