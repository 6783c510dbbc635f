package auth

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AuthResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    UserDTO `json:"data"`
	Token   string  `json:"token"`
}

type MeResponse struct {
	Success bool    `json:"success"`
	Data    UserDTO `json:"data"`
}
