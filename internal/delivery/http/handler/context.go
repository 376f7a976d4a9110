package handler

import (
	"context"

	"slot-reservation-service/internal/delivery/http/middleware"
	"slot-reservation-service/internal/usecase"
)

// callerFromContext builds the caller principal the usecases expect from the
// identity AuthMiddleware stored in the request context.
func callerFromContext(ctx context.Context) (usecase.Principal, bool) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return usecase.Principal{}, false
	}
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	if !ok {
		return usecase.Principal{}, false
	}
	return usecase.Principal{UserID: userID, RoleID: roleID}, true
}
