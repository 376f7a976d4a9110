package middleware

import (
	"net/http"

	"slot-reservation-service/internal/domain/entity"
	"slot-reservation-service/pkg/response"
)

// RequireRole checks that the authenticated caller holds one of the allowed
// roles. Role is read from context, set by AuthMiddleware from JWT claims.
func RequireRole(allowedRoleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, allowedRoleID := range allowedRoleIDs {
				if roleID == allowedRoleID {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireProvider guards provider-only endpoints
func RequireProvider(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDProvider)(next)
}

// RequireRequester guards requester-only endpoints
func RequireRequester(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDRequester)(next)
}
