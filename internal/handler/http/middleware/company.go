package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/mind-links/contractor-backend-go/internal/handler/http/response"
	"github.com/mind-links/contractor-backend-go/internal/pkg/jwt"
)

// RequireCompany rejects tokens that are not scoped to a company. Wizard
// sessions and invitations always belong to one.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, jwt.ErrInvalidToken)
			return
		}

		if userID, ok := claims["user_id"].(string); !ok || userID == "" {
			response.HandleError(w, jwt.ErrInvalidToken)
			return
		}

		companyID, ok := claims["company_id"].(string)
		if !ok || companyID == "" {
			response.HandleError(w, jwt.ErrCompanyRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
