package dto

type RegisterDTO struct {
	Email       string `json:"email" form:"email" validate:"required,email"`
	Password    string `json:"password" form:"password" validate:"required,min=6,max=128"`
	DisplayName string `json:"displayName" form:"displayName" validate:"omitempty,max=50"`
}

type CredentialDTO struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type VerifyDTO struct {
	IDToken string `json:"idToken" form:"idToken" validate:"required"`
}

// AuthUserDTO 身份提供方返回的最小用户信息
type AuthUserDTO struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoURL,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

type AuthResultDTO struct {
	User        *AuthUserDTO `json:"user"`
	CustomToken string       `json:"customToken,omitempty"`
}
