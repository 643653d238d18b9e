package dto

type CreateUserInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=admin member"`
}

// UpdateAdminUserInput changes a team member's profile. Empty fields are left untouched.
type UpdateAdminUserInput struct {
	Username string `json:"username" binding:"omitempty,min=3,max=50"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Name     string `json:"name" binding:"omitempty,max=100"`
	Role     string `json:"role" binding:"omitempty,oneof=admin member"`
}
