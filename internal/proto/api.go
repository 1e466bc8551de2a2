package proto

// Response is the envelope every API endpoint answers with.
type Response[T any] struct {
	Data    T      `json:"data"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" binding:"required,email"`
	Password string `json:"password" validate:"required" binding:"required"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	FullName string `json:"fullname" validate:"required,max=64" binding:"required,max=64"`
	Email    string `json:"email" validate:"required,email" binding:"required,email"`
	Password string `json:"password" validate:"required,min=6" binding:"required,min=6"`
}

// UpdateProfileRequest is the body of PUT /auth/update-profile.
type UpdateProfileRequest struct {
	ProfilePic string `json:"profilePic" validate:"required" binding:"required"`
}

// SendMessageRequest is the body of POST /message/send/{chatId}.
type SendMessageRequest struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// CreateGroupRequest is the body of POST /group/create.
type CreateGroupRequest struct {
	Name    string   `json:"name" validate:"required,max=50" binding:"required,max=50"`
	Members []string `json:"members" validate:"required,min=1,dive,required" binding:"required,min=1"`
}

// UpdateGroupRequest is the body of PUT /group/{id}.
type UpdateGroupRequest struct {
	Name string `json:"name" validate:"required,max=50" binding:"required,max=50"`
}

// MembersRequest is the body of POST and DELETE /group/{id}/members.
type MembersRequest struct {
	MemberIDs []string `json:"memberIds" binding:"required,min=1"`
}
