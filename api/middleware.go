package api

import (
	"context"
	"net/http"

	"github.com/crewdesk/workforce-engine/reporting"
)

type contextKey int

const companyKey contextKey = iota

// TenantScope resolves the company scope for every tenant route. The scope
// arrives in the X-Company-ID header (the session layer that would normally
// resolve it lives outside this service). A request without a scope is
// rejected here, before any handler can reach the store.
func TenantScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		companyID := r.Header.Get("X-Company-ID")
		if companyID == "" {
			writeError(w, http.StatusUnauthorized, "Missing company scope", reporting.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), companyKey, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// companyFrom returns the tenant scope placed by TenantScope.
func companyFrom(ctx context.Context) string {
	companyID, _ := ctx.Value(companyKey).(string)
	return companyID
}
