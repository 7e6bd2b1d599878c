package dto

// RegisterRequest is the multipart form for registration (plus an avatar file)
type RegisterRequest struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest carries the old and new credentials
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// UpdateProfileRequest carries optional profile fields
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ForgotPasswordRequest carries the account email
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the replacement password
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// PlaylistRequest references a course by id
type PlaylistRequest struct {
	ID string `json:"id" binding:"required"`
}

// CreateCourseRequest is the multipart form for course creation (plus poster)
type CreateCourseRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
	Category    string `form:"category" binding:"required"`
	CreatedBy   string `form:"createdBy" binding:"required"`
}

// AddLectureRequest is the multipart form for a lecture (plus video)
type AddLectureRequest struct {
	Title       string `form:"title" binding:"required"`
	Description string `form:"description" binding:"required"`
}

// PaymentVerificationRequest is the gateway checkout callback body
type PaymentVerificationRequest struct {
	RazorpaySignature      string `form:"razorpay_signature" json:"razorpay_signature" binding:"required"`
	RazorpayPaymentID      string `form:"razorpay_payment_id" json:"razorpay_payment_id" binding:"required"`
	RazorpaySubscriptionID string `form:"razorpay_subscription_id" json:"razorpay_subscription_id" binding:"required"`
}
