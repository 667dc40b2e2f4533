package middleware

import (
	"context"
	"net/http"
	"strings"
)

// context key
type contextKey string

const CompanyIDKey contextKey = "companyID"

// CompanyScope extracts the tenant from the X-Company-ID header set by the
// upstream auth layer. Every bankfeed route is scoped to one company;
// requests without a company are rejected before reaching a handler.
func CompanyScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		companyID := strings.TrimSpace(r.Header.Get("X-Company-ID"))
		if companyID == "" {
			http.Error(w, "missing X-Company-ID header", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), CompanyIDKey, companyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Helper to extract the company ID
func CompanyID(ctx context.Context) string {
	companyID, _ := ctx.Value(CompanyIDKey).(string)
	return companyID
}
