package storage

import "context"

// tenantKey is an unexported context key type so other packages cannot
// collide with it.
type tenantKey struct{}

// SetTenant returns a context carrying the tenant identifier. The HTTP
// layer calls this with the value of the X-Tenant-ID header.
func SetTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// GetTenant returns the tenant identifier from the context. An empty
// string means single-tenant mode: adapters then keep all records under
// the one implicit tenant.
func GetTenant(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKey{}).(string); ok {
		return v
	}
	return ""
}
