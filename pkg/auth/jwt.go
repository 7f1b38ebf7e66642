package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/khryptorgraphics/nonaxiomatic/internal/config"
)

// JWTService handles JWT token operations for the reasoner's API surface.
type JWTService struct {
	privateKey    *rsa.PrivateKey
	publicKey     *rsa.PublicKey
	issuer        string
	audience      string
	expiration    time.Duration
	refreshExpiry time.Duration
}

// Claims represents the JWT claims structure carried by an operator's token.
type Claims struct {
	UserID      string            `json:"user_id"`
	Username    string            `json:"username"`
	Role        string            `json:"role"`
	Permissions []string          `json:"permissions"`
	Metadata    map[string]string `json:"metadata"`
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// NewJWTService creates a new JWT service instance, generating a fresh RS256
// key pair. The reasoner process does not persist this key across restarts;
// a restart invalidates every outstanding token.
func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	service := &JWTService{
		privateKey:    privateKey,
		publicKey:     &privateKey.PublicKey,
		issuer:        "nars-core",
		audience:      "nars-core-users",
		expiration:    24 * time.Hour,
		refreshExpiry: 7 * 24 * time.Hour,
	}

	if cfg != nil {
		if cfg.Issuer != "" {
			service.issuer = cfg.Issuer
		}
		if cfg.Audience != "" {
			service.audience = cfg.Audience
		}
		if cfg.ExpiryTime > 0 {
			service.expiration = cfg.ExpiryTime
		}
		if cfg.RefreshTime > 0 {
			service.refreshExpiry = cfg.RefreshTime
		}
	}

	return service, nil
}

// GenerateToken creates a new access/refresh token pair for the given operator.
func (j *JWTService) GenerateToken(userID, username, role string, permissions []string) (*TokenPair, error) {
	now := time.Now()
	expiresAt := now.Add(j.expiration)
	refreshExpiresAt := now.Add(j.refreshExpiry)

	claims := &Claims{
		UserID:      userID,
		Username:    username,
		Role:        role,
		Permissions: permissions,
		Metadata:    make(map[string]string),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			Audience:  []string{j.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("%s_%d", userID, now.UnixNano()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	accessToken, err := token.SignedString(j.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			Audience:  []string{j.audience + "-refresh"},
			ExpiresAt: jwt.NewNumericDate(refreshExpiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        fmt.Sprintf("%s_refresh_%d", userID, now.UnixNano()),
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodRS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString(j.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// ValidateToken validates and parses a JWT token.
func (j *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(time.Now()) {
		return nil, errors.New("token has expired")
	}

	return claims, nil
}

// RefreshToken creates a new access token from a valid refresh token.
func (j *JWTService) RefreshToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := j.ValidateToken(refreshTokenString)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	if len(claims.Audience) == 0 || claims.Audience[0] != j.audience+"-refresh" {
		return nil, errors.New("not a refresh token")
	}

	return j.GenerateToken(claims.UserID, claims.Username, claims.Role, claims.Permissions)
}

// GetPublicKey returns the public key for external token verification.
func (j *JWTService) GetPublicKey() *rsa.PublicKey {
	return j.publicKey
}

// HasPermission checks if the claims contain a specific permission.
func (c *Claims) HasPermission(permission string) bool {
	for _, p := range c.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// SetMetadata stores a key/value pair in the claims' metadata map.
func (c *Claims) SetMetadata(key, value string) {
	if c.Metadata == nil {
		c.Metadata = make(map[string]string)
	}
	c.Metadata[key] = value
}

// GetMetadata returns the metadata value for key and whether it was set.
func (c *Claims) GetMetadata(key string) (string, bool) {
	v, ok := c.Metadata[key]
	return v, ok
}

// IsAdmin checks if the user has admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// IsOperator checks if the user has operator role or higher.
func (c *Claims) IsOperator() bool {
	return c.Role == RoleAdmin || c.Role == RoleOperator
}

// Predefined roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleUser     = "user"
	RoleReadonly = "readonly"
)

// Predefined permissions, scoped to the reasoner's own resources rather
// than a model/cluster inference surface.
const (
	PermissionConceptManage  = "concept:manage"
	PermissionConceptRead    = "concept:read"
	PermissionClusterManage  = "cluster:manage"
	PermissionClusterRead    = "cluster:read"
	PermissionSnapshotManage = "snapshot:manage"
	PermissionTaskSubmit     = "task:submit"
	PermissionMetricsRead    = "metrics:read"
)

// GetRolePermissions returns the default permission set for a role.
func GetRolePermissions(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{
			PermissionConceptManage, PermissionConceptRead,
			PermissionClusterManage, PermissionClusterRead,
			PermissionSnapshotManage, PermissionTaskSubmit,
			PermissionMetricsRead,
		}
	case RoleOperator:
		return []string{
			PermissionConceptRead, PermissionClusterRead,
			PermissionTaskSubmit, PermissionMetricsRead,
		}
	case RoleUser:
		return []string{
			PermissionConceptRead, PermissionTaskSubmit,
		}
	case RoleReadonly:
		return []string{
			PermissionConceptRead, PermissionClusterRead, PermissionMetricsRead,
		}
	default:
		return []string{}
	}
}
