package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	usecase "pos-account-service/internal/usecase/account"
	"pos-account-service/pkg/utils"
)

func (h *AccountHandler) GetProfile(c *gin.Context) {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile accepts multipart or urlencoded form data. Fields absent
// from the form keep their stored values; an optional "image" file is
// pushed to the image store before the update is applied.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return
	}

	req := usecase.UpdateProfileRequest{
		FirstName:   sanitizedFormField(c, "first_name", utils.SanitizeString),
		LastName:    sanitizedFormField(c, "last_name", utils.SanitizeString),
		PhoneNumber: sanitizedFormField(c, "phone_number", utils.SanitizePhone),
		Address:     sanitizedFormField(c, "address", utils.SanitizeString),
		Gender:      sanitizedFormField(c, "gender", utils.SanitizeString),
		BirthDate:   sanitizedFormField(c, "birth_date", utils.SanitizeString),
		Bio:         sanitizedFormField(c, "bio", utils.SanitizeText),
	}

	image, err := profileImageFromForm(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), accountID, &req, image)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return
	}

	var req usecase.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), accountID, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password was successfully updated.", nil)
}

func sanitizedFormField(c *gin.Context, key string, sanitize func(string) string) *string {
	value, exists := c.GetPostForm(key)
	if !exists {
		return nil
	}
	sanitized := sanitize(value)
	return &sanitized
}

func profileImageFromForm(c *gin.Context) (*usecase.ProfileImage, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &usecase.ProfileImage{
		ContentType: contentType,
		Body:        file,
	}, nil
}
