package usecase

import "github.com/google/uuid"

// Principal identifies the authenticated caller. The delivery layer resolves
// identity and role from the access token; usecases never reach into the
// users table to re-derive them.
type Principal struct {
	UserID uuid.UUID
	RoleID int
}
