package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hoursync/hoursync-backend-go/internal/domain/auth"
	"github.com/hoursync/hoursync-backend-go/internal/domain/employee"
	"github.com/hoursync/hoursync-backend-go/internal/handler/http/response"
)

// ActiveEmployeeMiddleware rejects tokens of employees deactivated after the token was issued
type ActiveEmployeeMiddleware struct {
	employeeRepo employee.EmployeeRepository
}

func NewActiveEmployeeMiddleware(employeeRepo employee.EmployeeRepository) *ActiveEmployeeMiddleware {
	return &ActiveEmployeeMiddleware{
		employeeRepo: employeeRepo,
	}
}

// RequireActiveEmployee must run after AuthRequired
func (m *ActiveEmployeeMiddleware) RequireActiveEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		employeeID, err := EmployeeIDFromContext(r.Context())
		if err != nil {
			response.HandleError(w, err)
			return
		}

		emp, err := m.employeeRepo.GetByID(r.Context(), employeeID)
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("Token refers to unknown employee", "employee_id", employeeID)
			response.HandleError(w, auth.ErrInvalidToken)
			return
		}
		if err != nil {
			response.HandleError(w, err)
			return
		}
		if !emp.IsActive() {
			response.HandleError(w, auth.ErrAccountDisabled)
			return
		}

		next.ServeHTTP(w, r)
	})
}
