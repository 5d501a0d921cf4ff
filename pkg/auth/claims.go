package auth

import (
	"strconv"

	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uint
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID uint           `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token carries the admin role.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.UserRoleAdmin
}

// Subject renders the user id the way it is stored in the sub claim.
func subjectFor(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

// Actor is the authenticated caller as seen by services.
type Actor struct {
	UserID uint
	Role   enums.UserRole
}

// IsAdmin reports whether the caller holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == enums.UserRoleAdmin
}

// CanAccessUser reports whether the caller may act on userID's resources.
func (a Actor) CanAccessUser(userID uint) bool {
	return a.IsAdmin() || (a.UserID != 0 && a.UserID == userID)
}
