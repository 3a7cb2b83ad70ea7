package handlers

import (
	"errors"
	"net/http"

	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/models"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type GroupInfo struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type GroupCreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func newGroupInfo(g *models.Group) GroupInfo {
	return GroupInfo{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
	}
}

func GroupList(c *gin.Context) {
	groups, err := models.GroupList()
	if err != nil {
		respondError(c, err)
		return
	}
	result := make([]GroupInfo, 0, len(groups))
	for i := range groups {
		result = append(result, newGroupInfo(&groups[i]))
	}
	c.JSON(http.StatusOK, result)
}

func GroupGet(c *gin.Context) {
	id, ok := idParam(c, "group_id")
	if !ok {
		return
	}
	group, err := models.GroupByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGroupInfo(&group))
}

// GroupCreate is available to staff only, regular users read groups
func GroupCreate(c *gin.Context, user *models.User) {
	r := GroupCreateRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	group := models.Group{
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
	}
	err := models.GroupCreate(&group)
	switch {
	case errors.Is(err, models.ErrInvalidSlug), errors.Is(err, models.ErrInvalidGroup), errors.Is(err, models.ErrGroupTitleTooLong):
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	case errors.Is(err, db.ErrUniqueViolation):
		c.JSON(http.StatusBadRequest, Response{"group with this slug already exists"})
		return
	case err != nil:
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGroupInfo(&group))
}

// GroupDelete keeps the group's posts, they just lose the group reference
func GroupDelete(c *gin.Context, user *models.User) {
	id, ok := idParam(c, "group_id")
	if !ok {
		return
	}
	if err := models.GroupDelete(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
