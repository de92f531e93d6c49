package middleware

import (
	"net/http"

	"github.com/hoursync/hoursync-backend-go/internal/domain/auth"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/response"
)

// AdminOnly must run after AuthRequired.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdminFromContext(r.Context()) {
			response.HandleError(w, auth.ErrAdminPrivilegeRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
