/*
Package observability turns editor lifecycle hooks into prometheus metrics and
structured log lines.

Both helpers return a domain.Hooks value, so they compose with Hooks.Merge:

	m := observability.NewMetrics(prometheus.NewRegistry())
	hooks := m.Hooks().Merge(observability.LogHooks(logger))
	sess, err := editor.Open(ctx, store, id, editor.WithHooks(hooks))
*/
package observability
