package jwtutil

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Token audiences keep tenant user and system admin tokens apart
const (
	AudienceUser  = "tenant-user"
	AudienceAdmin = "system-admin"
)

var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
	Issuer          string
}

// UserClaims represents the JWT claims of a tenant user
type UserClaims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TenantKey string `json:"tenant"`
	Schema    string `json:"schema"`
	RoleID    *uint  `json:"role_id,omitempty"`
	jwt.RegisteredClaims
}

// AdminClaims represents the JWT claims of a system admin
type AdminClaims struct {
	AdminID uint   `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: config,
	}
}

// TTL is the fixed validity window of issued tokens
func (j *JWTUtil) TTL() time.Duration {
	return time.Duration(j.config.ExpirationHours) * time.Hour
}

func (j *JWTUtil) registered(subject uint, audience string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    j.config.Issuer,
		Subject:   strconv.FormatUint(uint64(subject), 10),
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL())),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

// GenerateUserToken creates a token for a tenant user
func (j *JWTUtil) GenerateUserToken(userID uint, email, tenantKey, schema string, roleID *uint) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := UserClaims{
		UserID:           userID,
		Email:            email,
		TenantKey:        tenantKey,
		Schema:           schema,
		RoleID:           roleID,
		RegisteredClaims: j.registered(userID, AudienceUser),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.config.SigningKey))
}

// GenerateAdminToken creates a token for a system admin
func (j *JWTUtil) GenerateAdminToken(adminID uint, email string) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := AdminClaims{
		AdminID:          adminID,
		Email:            email,
		RegisteredClaims: j.registered(adminID, AudienceAdmin),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.config.SigningKey))
}

// ValidateUserToken validates a tenant user token
func (j *JWTUtil) ValidateUserToken(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if !claims.VerifyAudience(AudienceUser, true) {
		return nil, fmt.Errorf("%w: wrong audience", ErrInvalidToken)
	}
	return claims, nil
}

// ValidateAdminToken validates a system admin token
func (j *JWTUtil) ValidateAdminToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	if err := j.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if !claims.VerifyAudience(AudienceAdmin, true) {
		return nil, fmt.Errorf("%w: wrong audience", ErrInvalidToken)
	}
	return claims, nil
}

func (j *JWTUtil) parse(tokenString string, claims jwt.Claims) error {
	if j.config == nil {
		return errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
