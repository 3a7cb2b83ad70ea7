package auth

import (
	"net/http"
	"strings"

	"github.com/ioann7/api-yatube/models"

	"github.com/gin-gonic/gin"
)

// User is authenticated and possesses the required permissions
type HandlerFunc func(c *gin.Context, user *models.User)

// Router is a wrapper class that adds auth checks + User pre-loading
type Router struct {
	Base gin.IRoutes
}

// CurrentUser resolves the request's user from a "Bearer" access token first,
// then from the cookie session. Zero ID means anonymous.
func CurrentUser(c *gin.Context) (user models.User) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return
		}
		userID, err := ParseToken(strings.TrimSpace(token), TokenTypeAccess)
		if err != nil {
			return
		}
		user, err = models.UserByID(userID)
		if err != nil {
			return models.User{}
		}
		return
	}
	if session := LoadSession(c); session != nil {
		return session.User()
	}
	return
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc, required []models.Permission) {
	user := CurrentUser(c)
	if user.ID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
		return
	}
	if !user.HasPermissions(required) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	handler(c, &user)
}

func (cr *Router) POST(path string, handler HandlerFunc, required ...models.Permission) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) GET(path string, handler HandlerFunc, required ...models.Permission) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) PUT(path string, handler HandlerFunc, required ...models.Permission) {
	cr.Base.PUT(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) PATCH(path string, handler HandlerFunc, required ...models.Permission) {
	cr.Base.PATCH(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}

func (cr *Router) DELETE(path string, handler HandlerFunc, required ...models.Permission) {
	cr.Base.DELETE(path, func(c *gin.Context) {
		cr.baseExec(c, handler, required)
	})
}
