package config

import "context"

type ctxKey struct{}

type projectKey struct{}

// WithConfig stores the effective configuration in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the configuration stored in ctx, or defaults.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	cfg := Default()
	return &cfg
}

// WithProjectRoot stores the project root in ctx.
func WithProjectRoot(ctx context.Context, root string) context.Context {
	return context.WithValue(ctx, projectKey{}, root)
}

// ProjectRootFromContext returns the project root stored in ctx.
func ProjectRootFromContext(ctx context.Context) string {
	root, _ := ctx.Value(projectKey{}).(string)
	return root
}
