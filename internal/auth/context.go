package auth

import "github.com/gin-gonic/gin"

const (
	identityKey = "identity"
	tokenKey    = "accessToken"
)

// GetIdentity returns the identity stored by the auth middleware.
func GetIdentity(c *gin.Context) (*Identity, bool) {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*Identity); ok {
			return id, true
		}
	}
	return nil, false
}

// GetUserID returns the authenticated user's ID or empty string.
func GetUserID(c *gin.Context) string {
	if id, ok := GetIdentity(c); ok {
		return id.UserID
	}
	return ""
}

// GetUserEmail returns the authenticated user's email or empty string.
func GetUserEmail(c *gin.Context) string {
	if id, ok := GetIdentity(c); ok {
		return id.Email
	}
	return ""
}

// GetAccessToken returns the bearer token the request was authenticated with.
func GetAccessToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func setIdentity(c *gin.Context, id *Identity, token string) {
	c.Set(identityKey, id)
	c.Set(tokenKey, token)
}
