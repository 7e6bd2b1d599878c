package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/dto"
	"github.com/Prasad22V/coursebundler-server/internal/middleware"
	"github.com/Prasad22V/coursebundler-server/internal/service"
	"github.com/Prasad22V/coursebundler-server/pkg/response"
)

// UserHandler handles profile, password-reset, playlist and admin requests
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a UserHandler
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func pathObjectID(c *gin.Context, name string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(c.Param(name))
	if err != nil {
		return bson.ObjectID{}, domain.E(domain.KindValidation, "Invalid id")
	}
	return id, nil
}

// ChangePassword handles PUT /api/v1/changepassword
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Please enter all fields"))
		return
	}

	user, _ := middleware.GetUser(c)
	if err := h.users.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Password Changed Successfully")
}

// UpdateProfile handles PUT /api/v1/updateprofile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Invalid request body"))
		return
	}

	user, _ := middleware.GetUser(c)
	if err := h.users.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Email); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Profile Updated Successfully")
}

// UpdateAvatar handles PUT /api/v1/updateprofilepicture
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	avatar, err := openUpload(c, "file")
	if err != nil {
		response.FromError(c, err)
		return
	}
	defer avatar.Close()

	user, _ := middleware.GetUser(c)
	if err := h.users.UpdateAvatar(c.Request.Context(), user.ID, avatar); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Profile Picture Updated Successfully")
}

// ForgotPassword handles POST /api/v1/forgetpassword
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Please enter your email"))
		return
	}

	if err := h.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, fmt.Sprintf("Reset Token has been sent to %s", req.Email))
}

// ResetPassword handles PUT /api/v1/resetpassword/:token
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Please enter a new password"))
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Password Changed Successfully")
}

// AddToPlaylist handles POST /api/v1/addtoplaylist
func (h *UserHandler) AddToPlaylist(c *gin.Context) {
	var req dto.PlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, domain.E(domain.KindValidation, "Course id is required"))
		return
	}
	courseID, err := bson.ObjectIDFromHex(req.ID)
	if err != nil {
		response.FromError(c, domain.E(domain.KindNotFound, "Invalid course id"))
		return
	}

	user, _ := middleware.GetUser(c)
	if err := h.users.AddToPlaylist(c.Request.Context(), user.ID, courseID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Added To Playlist")
}

// RemoveFromPlaylist handles DELETE /api/v1/removefromplaylist?id=
func (h *UserHandler) RemoveFromPlaylist(c *gin.Context) {
	courseID, err := bson.ObjectIDFromHex(c.Query("id"))
	if err != nil {
		response.FromError(c, domain.E(domain.KindNotFound, "Invalid course id"))
		return
	}

	user, _ := middleware.GetUser(c)
	if err := h.users.RemoveFromPlaylist(c.Request.Context(), user.ID, courseID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Removed From Playlist")
}

// ListUsers handles GET /api/v1/admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Data(c, gin.H{"users": users})
}

// ToggleRole handles PUT /api/v1/admin/user/:id
func (h *UserHandler) ToggleRole(c *gin.Context) {
	userID, err := pathObjectID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.users.ToggleRole(c.Request.Context(), userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "Role Updated")
}

// DeleteUser handles DELETE /api/v1/admin/user/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := pathObjectID(c, "id")
	if err != nil {
		response.FromError(c, err)
		return
	}

	if err := h.users.DeleteUser(c.Request.Context(), userID); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, "User Deleted Successfully")
}
