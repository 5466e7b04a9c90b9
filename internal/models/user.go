package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	// RoleCoordinator is a shift coordinator who edits and publishes rosters.
	RoleCoordinator UserRole = "COORDINATOR"
	// RoleViewer is a ward worker with read-only roster access.
	RoleViewer UserRole = "VIEWER"
)

// User is a staff account of the ward. Coordinator and viewer accounts belong
// to a ward team; a viewer may additionally be linked to the roster row of
// the nurse the account represents.
type User struct {
	ID           string   `db:"id" json:"id"`
	Email        string   `db:"email" json:"email"`
	PasswordHash string   `db:"password_hash" json:"-"`
	FullName     string   `db:"full_name" json:"full_name"`
	Role         UserRole `db:"role" json:"role"`
	// Ward is the team label used in roster rows, e.g. "A".
	Ward string `db:"ward" json:"ward"`
	// WorkerName links the account to a worker row in the schedule. Nil for
	// accounts that do not appear on the roster themselves.
	WorkerName *string    `db:"worker_name" json:"worker_name,omitempty"`
	Active     bool       `db:"active" json:"active"`
	LastLogin  *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Ward      string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
