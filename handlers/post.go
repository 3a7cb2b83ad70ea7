package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ioann7/api-yatube/models"
	"github.com/ioann7/api-yatube/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type PostInfo struct {
	ID      uint64    `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Image   *string   `json:"image"`
	Group   *uint64   `json:"group"`
}

// PostRequest is the body of create/update calls. On update, absent fields keep their values
type PostRequest struct {
	Text  *string `json:"text"`
	Group *uint64 `json:"group"`
	Image *string `json:"image"` // base64 data URI, null or "" removes the image
}

type PostListRequest struct {
	PageRequest
	Group uint64 `form:"group"`
}

func newPostInfo(p *models.Post) PostInfo {
	return PostInfo{
		ID:      p.ID,
		Author:  p.Author.Username,
		Text:    p.Text,
		PubDate: p.PubDate,
		Image:   imageURL(p.Image),
		Group:   p.GroupID,
	}
}

func listPosts(c *gin.Context, pr *PageRequest, list func(limit, offset int) ([]models.Post, int64, error)) {
	limit, offset := 0, 0
	if pr.Paginated() {
		limit, offset = *pr.Limit, pr.Offset
	}
	posts, count, err := list(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	result := make([]PostInfo, 0, len(posts))
	for i := range posts {
		result = append(result, newPostInfo(&posts[i]))
	}
	if !pr.Paginated() {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusOK, pr.NewPage(c, count, result))
}

func PostList(c *gin.Context) {
	r := PostListRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	listPosts(c, &r.PageRequest, func(limit, offset int) ([]models.Post, int64, error) {
		return models.PostList(models.PostFilter{GroupID: r.Group, Limit: limit, Offset: offset})
	})
}

// Feed lists the posts of the accounts the current user follows
func Feed(c *gin.Context, user *models.User) {
	r := PageRequest{}
	if err := c.ShouldBindQuery(&r); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	listPosts(c, &r, func(limit, offset int) ([]models.Post, int64, error) {
		return models.FeedForUser(user.ID, limit, offset)
	})
}

func PostGet(c *gin.Context) {
	id, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	post, err := models.PostByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostInfo(&post))
}

// checkGroup turns an unknown group into a 400 before the insert hits the foreign key
func checkGroup(c *gin.Context, groupID *uint64) bool {
	if groupID == nil {
		return true
	}
	if _, err := models.GroupByID(*groupID); err != nil {
		c.JSON(http.StatusBadRequest, Response{"group does not exist"})
		return false
	}
	return true
}

func PostCreate(c *gin.Context, user *models.User) {
	r := PostRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.Text == nil || *r.Text == "" {
		c.JSON(http.StatusBadRequest, Response{"text: this field is required"})
		return
	}
	if !checkGroup(c, r.Group) {
		return
	}
	post := models.Post{
		Text:     *r.Text,
		AuthorID: user.ID,
		GroupID:  r.Group,
	}
	if r.Image != nil && *r.Image != "" {
		path, err := saveImage(*r.Image)
		if errors.Is(err, errBadImage) {
			c.JSON(http.StatusBadRequest, Response{err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, StorageErrorResponse)
			return
		}
		post.Image = &path
	}
	if err := models.PostCreate(&post); err != nil {
		deleteImage(post.Image)
		respondError(c, err)
		return
	}
	monitoring.PostsCreated.Inc()
	post.Author = *user
	c.JSON(http.StatusCreated, newPostInfo(&post))
}

// loadOwnPost loads the post from the URL and checks that user wrote it
func loadOwnPost(c *gin.Context, user *models.User) (post models.Post, ok bool) {
	id, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	post, err := models.PostByID(id)
	if err != nil {
		respondError(c, err)
		return post, false
	}
	if post.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, ForbiddenResponse)
		return post, false
	}
	return post, true
}

func postUpdate(c *gin.Context, user *models.User, partial bool) {
	post, ok := loadOwnPost(c, user)
	if !ok {
		return
	}
	r := PostRequest{}
	present := map[string]json.RawMessage{}
	if err := c.ShouldBindBodyWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if err := c.ShouldBindBodyWith(&present, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if _, found := present["text"]; found || !partial {
		if r.Text == nil || *r.Text == "" {
			c.JSON(http.StatusBadRequest, Response{"text: this field is required"})
			return
		}
		post.Text = *r.Text
	}
	if _, found := present["group"]; found {
		if !checkGroup(c, r.Group) {
			return
		}
		post.GroupID = r.Group
	}
	oldImage := post.Image
	if _, found := present["image"]; found {
		post.Image = nil
		if r.Image != nil && *r.Image != "" {
			path, err := saveImage(*r.Image)
			if errors.Is(err, errBadImage) {
				c.JSON(http.StatusBadRequest, Response{err.Error()})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, StorageErrorResponse)
				return
			}
			post.Image = &path
		}
	}
	if err := models.PostUpdate(&post); err != nil {
		if post.Image != oldImage {
			deleteImage(post.Image)
		}
		respondError(c, err)
		return
	}
	if post.Image != oldImage {
		deleteImage(oldImage)
	}
	if post.GroupID == nil {
		post.Group = nil
	}
	c.JSON(http.StatusOK, newPostInfo(&post))
}

func PostUpdate(c *gin.Context, user *models.User) {
	postUpdate(c, user, false)
}

func PostPartialUpdate(c *gin.Context, user *models.User) {
	postUpdate(c, user, true)
}

func PostDelete(c *gin.Context, user *models.User) {
	post, ok := loadOwnPost(c, user)
	if !ok {
		return
	}
	if err := models.PostDelete(post.ID); err != nil {
		respondError(c, err)
		return
	}
	deleteImage(post.Image)
	c.Status(http.StatusNoContent)
}
