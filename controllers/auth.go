package controllers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftlink/marketplace-api/db"
	"github.com/craftlink/marketplace-api/models"
	"github.com/craftlink/marketplace-api/utils"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "solid_secret_key" // Replace with secure key in production
	}
	return []byte(secret)
}

// Register handles user registration
func Register(c *fiber.Ctx) error {
	user := new(models.User)

	if err := c.BodyParser(user); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	if user.Email == "" || user.Password == "" || user.Name == "" {
		return utils.Fail(c, utils.ErrValidation, "Missing required fields", "name, email and password are required")
	}

	var existingUser models.User
	if db.DB.Where("email = ?", user.Email).First(&existingUser).RowsAffected > 0 {
		return utils.Fail(c, utils.ErrValidation, "User with this email already exists", "")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.FailInternal(c, "Failed to hash password", err)
	}
	user.Password = string(hashedPassword)

	// Default new accounts to the client role; builders are promoted via
	// the RBAC endpoints.
	if user.RoleID == 0 {
		var clientRole models.Role
		if err := db.DB.Where("name = ?", models.RoleClient).First(&clientRole).Error; err != nil {
			return utils.FailInternal(c, "Failed to assign default role", err)
		}
		user.RoleID = clientRole.ID
		user.Role = clientRole
	} else {
		var role models.Role
		if err := db.DB.First(&role, user.RoleID).Error; err != nil {
			return utils.Fail(c, utils.ErrValidation, "Role not found", "")
		}
		user.Role = role
	}

	if err := db.DB.Create(&user).Error; err != nil {
		return utils.FailInternal(c, "Failed to create user", err)
	}

	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles user authentication
func Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	var user models.User
	if db.DB.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return utils.Fail(c, utils.ErrAuthentication, "Invalid credentials", "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return utils.Fail(c, utils.ErrAuthentication, "Invalid credentials", "")
	}

	var role models.Role
	if err := db.DB.First(&role, user.RoleID).Error; err != nil {
		return utils.FailInternal(c, "Failed to fetch role", err)
	}

	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  role.Name,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret())
	if err != nil {
		return utils.FailInternal(c, "Failed to generate token", err)
	}

	refreshClaims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(),
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(jwtSecret())
	if err != nil {
		return utils.FailInternal(c, "Failed to generate refresh token", err)
	}

	return c.JSON(fiber.Map{
		"token":        tokenString,
		"refreshToken": refreshTokenString,
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  role.Name,
		},
	})
}

// GetUserProfile returns the current user's profile
func GetUserProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var userProfile models.User
	if err := db.DB.Preload("Role").Preload("Profile").First(&userProfile, userID).Error; err != nil {
		return utils.Fail(c, utils.ErrResource, "User not found", "")
	}

	userProfile.Password = ""
	return c.JSON(userProfile)
}

// RequestVerification emails a one-time code to an unverified account.
func RequestVerification(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	var user models.User
	if db.DB.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return utils.Fail(c, utils.ErrResource, "User not found", "")
	}
	if user.IsVerified {
		return utils.Fail(c, utils.ErrValidation, "Account is already verified", "")
	}

	user.OTP = utils.GenerateOTP()
	user.OTPExpiresAt = time.Now().Add(10 * time.Minute)
	if err := db.DB.Save(&user).Error; err != nil {
		return utils.FailInternal(c, "Failed to store verification code", err)
	}

	body := "<p>Your verification code is <strong>" + user.OTP + "</strong>. It expires in 10 minutes.</p>"
	if err := utils.SendEmail(user.Email, "Verify your account", body); err != nil {
		return utils.FailInternal(c, "Failed to send verification email", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Verification code sent",
	})
}

// VerifyEmail checks the one-time code and marks the account verified.
func VerifyEmail(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	var user models.User
	if db.DB.Where("email = ?", input.Email).First(&user).RowsAffected == 0 {
		return utils.Fail(c, utils.ErrResource, "User not found", "")
	}
	if user.OTP == "" || user.OTP != input.OTP {
		return utils.Fail(c, utils.ErrValidation, "Invalid verification code", "")
	}
	if time.Now().After(user.OTPExpiresAt) {
		return utils.Fail(c, utils.ErrValidation, "Verification code has expired", "")
	}

	user.IsVerified = true
	user.OTP = ""
	user.OTPExpiresAt = time.Time{}
	if err := db.DB.Save(&user).Error; err != nil {
		return utils.FailInternal(c, "Failed to verify account", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account verified successfully",
	})
}

// RefreshToken generates a new access token using a refresh token
func RefreshToken(c *fiber.Ctx) error {
	type RefreshRequest struct {
		RefreshToken string `json:"refreshToken"`
	}

	refreshRequest := new(RefreshRequest)
	if err := c.BodyParser(refreshRequest); err != nil {
		return utils.Fail(c, utils.ErrValidation, "Cannot parse JSON", err.Error())
	}

	token, err := jwt.Parse(refreshRequest.RefreshToken, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return utils.Fail(c, utils.ErrAuthentication, "Invalid refresh token", "")
	}

	claims := token.Claims.(jwt.MapClaims)

	// Re-read the role so a refresh can't outlive a role change.
	var user models.User
	if err := db.DB.Preload("Role").First(&user, uint(claims["id"].(float64))).Error; err != nil {
		return utils.Fail(c, utils.ErrAuthentication, "Account no longer exists", "")
	}

	newClaims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role.Name,
		"exp":   time.Now().Add(time.Hour * 24).Unix(),
	}
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims)
	tokenString, err := newToken.SignedString(jwtSecret())
	if err != nil {
		return utils.FailInternal(c, "Failed to generate token", err)
	}

	return c.JSON(fiber.Map{
		"token": tokenString,
	})
}
