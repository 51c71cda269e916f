package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a member's role within a workspace.
type Role string

// RoleOwner is currently the only role ever written.
const RoleOwner Role = "OWNER"

// personalWorkspaceSuffix is appended to the owner's email to form the
// workspace name.
const personalWorkspaceSuffix = " Personal Workspace"

// Workspace is the scoping boundary for a user's tasks.
type Workspace struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkspaceMember links a user to a workspace.
type WorkspaceMember struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// PersonalWorkspaceName derives the workspace name for an email.
// The same normalized email always yields the same name.
func PersonalWorkspaceName(email string) string {
	return NormalizeEmail(email) + personalWorkspaceSuffix
}

// NewPersonalWorkspace builds an unsaved personal workspace for email.
func NewPersonalWorkspace(email string) *Workspace {
	now := time.Now().UTC()
	return &Workspace{
		ID:        uuid.New(),
		Name:      PersonalWorkspaceName(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
