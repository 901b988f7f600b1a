package telemetry

import "context"

// logFieldsKey identifies request-scoped logging fields.
type logFieldsKey struct{}

// WithLogFields attaches an empty, mutable field map to ctx. The request
// logging middleware emits whatever handlers add to it.
func WithLogFields(ctx context.Context) (context.Context, map[string]string) {
	fields := make(map[string]string)
	return context.WithValue(ctx, logFieldsKey{}, fields), fields
}

// AddLogField attaches a key/value to the request-scoped log fields map.
// It is safe to call multiple times. No-op if no field map is present.
func AddLogField(ctx context.Context, key, value string) {
	if value == "" {
		return
	}
	if fields, ok := ctx.Value(logFieldsKey{}).(map[string]string); ok {
		fields[key] = value
	}
}

// AddError attaches an error message to the request-scoped log fields.
// No-op if err is nil.
func AddError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	AddLogField(ctx, "error", err.Error())
}
