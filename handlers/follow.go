package handlers

import (
	"errors"
	"net/http"

	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/models"
	"github.com/ioann7/api-yatube/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
)

type FollowInfo struct {
	User      string `json:"user"`
	Following string `json:"following"`
}

type FollowRequest struct {
	Following string `json:"following" binding:"required"`
}

type FollowListRequest struct {
	Search string `form:"search"`
}

var (
	FollowSelfResponse      = Response{"you cannot follow yourself"}
	FollowDuplicateResponse = Response{"you already follow this user"}
)

func FollowList(c *gin.Context, user *models.User) {
	r := FollowListRequest{}
	_ = c.ShouldBindQuery(&r)
	follows, err := models.FollowList(user.ID, r.Search)
	if err != nil {
		respondError(c, err)
		return
	}
	result := make([]FollowInfo, 0, len(follows))
	for _, follow := range follows {
		result = append(result, FollowInfo{
			User:      follow.User.Username,
			Following: follow.Following.Username,
		})
	}
	c.JSON(http.StatusOK, result)
}

// FollowCreate rejects self-follows early for a friendlier message; the
// duplicate and self-follow guarantees themselves come from the database constraints
func FollowCreate(c *gin.Context, user *models.User) {
	r := FollowRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	following, err := models.UserByUsername(r.Following)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusBadRequest, Response{"user " + r.Following + " does not exist"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	if following.ID == user.ID {
		c.JSON(http.StatusBadRequest, FollowSelfResponse)
		return
	}
	_, err = models.FollowCreate(user.ID, following.ID)
	switch {
	case errors.Is(err, db.ErrUniqueViolation):
		monitoring.ConstraintViolations.WithLabelValues("unique").Inc()
		c.JSON(http.StatusBadRequest, FollowDuplicateResponse)
		return
	case errors.Is(err, db.ErrCheckViolation):
		monitoring.ConstraintViolations.WithLabelValues("check").Inc()
		c.JSON(http.StatusBadRequest, FollowSelfResponse)
		return
	case err != nil:
		respondError(c, err)
		return
	}
	monitoring.FollowsCreated.Inc()
	c.JSON(http.StatusCreated, FollowInfo{User: user.Username, Following: following.Username})
}

func FollowDelete(c *gin.Context, user *models.User) {
	following, err := models.UserByUsername(c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err = models.FollowDelete(user.ID, following.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
