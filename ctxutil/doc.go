// Package ctxutil carries request-scoped values on context.Context.
//
// Every CLI invocation and every paginated query runs under a trace id so
// log lines of one request can be correlated:
//
//	ctx, traceID := ctxutil.EnsureTraceID(ctx)
//	logger.Infof(ctx, "walking %s", index) // carries trace_id
package ctxutil
