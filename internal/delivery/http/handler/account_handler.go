package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pos-account-service/internal/logger"
	"pos-account-service/internal/middleware"
	usecase "pos-account-service/internal/usecase/account"
	appErrors "pos-account-service/pkg/errors"
	"pos-account-service/pkg/utils"
)

type AccountHandler struct {
	service *usecase.Service
}

func NewAccountHandler(service *usecase.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterRoutes mounts the endpoints that need no authentication.
func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/users/", h.Register)
	router.POST("/login/", h.Login)
	router.POST("/verify-user-upon-registration/", h.Verify)
	router.POST("/verify-user-retry-code/", h.ResendCode)
	router.POST("/forget-password-with-email/", h.ForgotPassword)
}

// RegisterProtectedRoutes mounts the endpoints behind bearer auth.
func (h *AccountHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("/logout/", h.Logout)
	router.POST("/change-password/", h.ChangePassword)
	router.GET("/profile/", h.GetProfile)
	router.PUT("/profile/", h.UpdateProfile)
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req usecase.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)
	req.FirstName = utils.SanitizeString(req.FirstName)
	req.LastName = utils.SanitizeString(req.LastName)
	req.Address = utils.SanitizeString(req.Address)
	if req.PhoneNumber != nil {
		sanitized := utils.SanitizePhone(*req.PhoneNumber)
		req.PhoneNumber = &sanitized
	}
	if req.Bio != nil {
		sanitized := utils.SanitizeText(*req.Bio)
		req.Bio = &sanitized
	}

	response, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req usecase.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	response, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AccountHandler) Logout(c *gin.Context) {
	accountID, ok := authenticatedAccountID(c)
	if !ok {
		return
	}

	token := middleware.BearerToken(c)
	if token == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}

	if err := h.service.Logout(c.Request.Context(), accountID, token); err != nil {
		respondWithError(c, err)
		return
	}

	// Historical contract: this success body uses "detail", not "message".
	c.JSON(http.StatusOK, gin.H{"detail": "Logged out successfully."})
}

func (h *AccountHandler) Verify(c *gin.Context) {
	var req usecase.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	accountID, err := uuid.Parse(req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "User does not exist.")
		return
	}

	if err := h.service.Verify(c.Request.Context(), accountID, req.Code); err != nil {
		if errors.Is(err, appErrors.ErrAccountNotFound) {
			utils.ErrorResponse(c, http.StatusBadRequest, "User does not exist.")
			return
		}
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK,
		"Account has been verified successfully. Proceed to login.", nil)
}

func (h *AccountHandler) ResendCode(c *gin.Context) {
	var req usecase.ResendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	accountID, err := uuid.Parse(req.UserID)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user id. User does not exist.")
		return
	}

	status, err := h.service.ResendCode(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, appErrors.ErrAccountNotFound) {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid user id. User does not exist.")
			return
		}
		respondWithError(c, err)
		return
	}

	if status != http.StatusOK {
		utils.ErrorResponse(c, status, "Encountered an issue sending email. Retry!")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Code was resent to your email", nil)
}

func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req usecase.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	accountID, status, err := h.service.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if status != http.StatusOK {
		c.JSON(status, gin.H{
			"detail":  "Encountered an issue sending email. Retry!",
			"user_id": accountID,
		})
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Code was sent to your email",
		gin.H{"user_id": accountID})
}

// authenticatedAccountID pulls the account ID placed in the context by
// the auth middleware, answering 401 when it is absent.
func authenticatedAccountID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.AccountIDKey)
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return uuid.Nil, false
	}

	accountID, ok := value.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Invalid user identifier")
		return uuid.Nil, false
	}
	return accountID, true
}

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrAccountExists),
		errors.Is(err, appErrors.ErrEmailNotRegistered),
		errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrCodeMismatch),
		errors.Is(err, appErrors.ErrPasswordMismatch),
		errors.Is(err, appErrors.ErrSamePassword),
		errors.Is(err, appErrors.ErrWrongOldPassword):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErrors.ErrAccountNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErrors.ErrProfileNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		var upstreamErr *appErrors.UpstreamError
		if errors.As(err, &upstreamErr) {
			if upstreamErr.Service == "image" {
				utils.ErrorResponse(c, upstreamErr.Status, "Image upload failed")
				return
			}
			utils.ErrorResponse(c, upstreamErr.Status, "Encountered an issue sending email. Retry!")
			return
		}

		requestID := middleware.GetRequestID(c)
		logger.Error("Internal server error",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
