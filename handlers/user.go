package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/ioann7/api-yatube/auth"
	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

type UserCreateRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
}

type UserLoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type TokenRefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type TokenVerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type UserInfo struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

func UserCreate(c *gin.Context) {
	r := UserCreateRequest{}
	if err := c.ShouldBind(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if !usernamePattern.MatchString(r.Username) {
		c.JSON(http.StatusBadRequest, Response{"username may contain only letters, digits and @/./+/-/_"})
		return
	}
	user, err := models.UserCreate(r.Username, r.Password)
	if errors.Is(err, db.ErrUniqueViolation) {
		c.JSON(http.StatusBadRequest, Response{"a user with that username already exists"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, UserInfo{ID: user.ID, Username: user.Username})
}

// UserDeleteMe removes the current account together with everything it owns
func UserDeleteMe(c *gin.Context, user *models.User) {
	if err := models.UserDelete(user.ID); err != nil {
		respondError(c, err)
		return
	}
	if session := auth.LoadSession(c); session != nil {
		_ = session.LogoutUser()
	}
	c.Status(http.StatusNoContent)
}

func login(c *gin.Context) (user models.User, ok bool) {
	r := UserLoginRequest{}
	if err := c.ShouldBind(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	user, err := models.UserLogin(r.Username, r.Password)
	if errors.Is(err, models.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, Response{"no active account found with the given credentials"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	return user, true
}

func JWTCreate(c *gin.Context) {
	user, ok := login(c)
	if !ok {
		return
	}
	pair, err := auth.IssueTokens(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func JWTRefresh(c *gin.Context) {
	r := TokenRefreshRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	userID, err := auth.ParseToken(r.Refresh, auth.TokenTypeRefresh)
	if err != nil {
		c.JSON(http.StatusUnauthorized, Response{err.Error()})
		return
	}
	if _, err = models.UserByID(userID); err != nil {
		c.JSON(http.StatusUnauthorized, Response{auth.ErrInvalidToken.Error()})
		return
	}
	access, err := auth.IssueAccessToken(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

func JWTVerify(c *gin.Context) {
	r := TokenVerifyRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if _, err := auth.ParseToken(r.Token, auth.TokenTypeAccess); err != nil {
		if _, err = auth.ParseToken(r.Token, auth.TokenTypeRefresh); err != nil {
			c.JSON(http.StatusUnauthorized, Response{err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{})
}

// UserLogin starts a cookie session, an alternative to the bearer tokens
func UserLogin(c *gin.Context) {
	user, ok := login(c)
	if !ok {
		return
	}
	session := auth.LoadSession(c)
	if session == nil {
		c.JSON(http.StatusNotImplemented, Response{"sessions are disabled"})
		return
	}
	if err := session.LoginUser(&user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, UserInfo{ID: user.ID, Username: user.Username})
}

func UserLogout(c *gin.Context, user *models.User) {
	if session := auth.LoadSession(c); session != nil {
		_ = session.LogoutUser()
	}
	c.Status(http.StatusNoContent)
}
