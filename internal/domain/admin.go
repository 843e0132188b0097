package domain

import "time"

// RoleAdmin is the only role allowed on the dashboard API.
const RoleAdmin = "admin"

type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminSession is returned on successful dashboard login.
type AdminSession struct {
	Bearer    string    `json:"Bearer"`
	AdminID   string    `json:"admin_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PurgeResult summarises one retention sweep.
type PurgeResult struct {
	Scanned  int    `json:"scanned"`
	Archived int    `json:"archived"`
	Deleted  int    `json:"deleted"`
	Archive  string `json:"archive,omitempty"`
}
