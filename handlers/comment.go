package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ioann7/api-yatube/models"
	"github.com/ioann7/api-yatube/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type CommentInfo struct {
	ID      uint64    `json:"id"`
	Author  string    `json:"author"`
	Post    uint64    `json:"post"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
}

type CommentRequest struct {
	Text *string `json:"text"`
}

func newCommentInfo(comment *models.Comment) CommentInfo {
	return CommentInfo{
		ID:      comment.ID,
		Author:  comment.Author.Username,
		Post:    comment.PostID,
		Text:    comment.Text,
		Created: comment.Created,
	}
}

// loadPost makes sure the post in the URL exists, comments are always scoped by it
func loadPost(c *gin.Context) (uint64, bool) {
	postID, ok := idParam(c, "post_id")
	if !ok {
		return 0, false
	}
	if _, err := models.PostByID(postID); err != nil {
		respondError(c, err)
		return 0, false
	}
	return postID, true
}

// CommentList returns the comments of a post, newest first
func CommentList(c *gin.Context) {
	postID, ok := loadPost(c)
	if !ok {
		return
	}
	comments, err := models.CommentsForPost(postID)
	if err != nil {
		respondError(c, err)
		return
	}
	result := make([]CommentInfo, 0, len(comments))
	for i := range comments {
		result = append(result, newCommentInfo(&comments[i]))
	}
	c.JSON(http.StatusOK, result)
}

func CommentGet(c *gin.Context) {
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	id, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	comment, err := models.CommentByID(postID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentInfo(&comment))
}

func CommentCreate(c *gin.Context, user *models.User) {
	postID, ok := loadPost(c)
	if !ok {
		return
	}
	r := CommentRequest{}
	if err := c.ShouldBindWith(&r, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, Response{err.Error()})
		return
	}
	if r.Text == nil || *r.Text == "" {
		c.JSON(http.StatusBadRequest, Response{"text: this field is required"})
		return
	}
	comment := models.Comment{
		AuthorID: user.ID,
		PostID:   postID,
		Text:     *r.Text,
	}
	if err := models.CommentCreate(&comment); err != nil {
		respondError(c, err)
		return
	}
	monitoring.CommentsCreated.Inc()
	comment.Author = *user
	c.JSON(http.StatusCreated, newCommentInfo(&comment))
}

func loadOwnComment(c *gin.Context, user *models.User) (comment models.Comment, ok bool) {
	postID, ok := idParam(c, "post_id")
	if !ok {
		return
	}
	id, ok := idParam(c, "comment_id")
	if !ok {
		return
	}
	comment, err := models.CommentByID(postID, id)
	if err != nil {
		respondError(c, err)
		return comment, false
	}
	if comment.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, ForbiddenResponse)
		return comment, false
	}
	return comment, true
}

func commentUpdate(c *gin.Context, user *models.User, partial bool) {
	comment, ok := loadOwnComment(c, user)
	if !ok {
		return
	}
	r := CommentRequest{}
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
		comment.Text = *r.Text
	}
	if err := models.CommentUpdate(&comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentInfo(&comment))
}

func CommentUpdate(c *gin.Context, user *models.User) {
	commentUpdate(c, user, false)
}

func CommentPartialUpdate(c *gin.Context, user *models.User) {
	commentUpdate(c, user, true)
}

func CommentDelete(c *gin.Context, user *models.User) {
	comment, ok := loadOwnComment(c, user)
	if !ok {
		return
	}
	if err := models.CommentDelete(comment.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
