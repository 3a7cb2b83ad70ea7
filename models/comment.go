package models

import (
	"time"

	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Comment struct {
	ID       uint64    `gorm:"primaryKey"`
	AuthorID uint64    `gorm:"not null;index"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PostID   uint64    `gorm:"not null;index"`
	Post     Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Text     string    `gorm:"type:text;not null"`
	Created  time.Time `gorm:"<-:create;not null;index"`
}

// CommentOrder is the default ordering: newest first. Same-instant comments keep insertion order reversed
const CommentOrder = "created DESC, id DESC"

func (c Comment) String() string {
	return utils.Truncate(c.Text, 10)
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	c.Created = time.Now().UTC()
	return nil
}

func CommentCreate(c *Comment) error {
	return db.Classify(db.Instance.Omit(clause.Associations).Create(c).Error)
}

func CommentsForPost(postID uint64) (comments []Comment, err error) {
	err = db.Instance.Preload("Author").Where("post_id = ?", postID).Order(CommentOrder).Find(&comments).Error
	return
}

func CommentByID(postID, id uint64) (c Comment, err error) {
	err = db.Instance.Preload("Author").Where("post_id = ?", postID).First(&c, id).Error
	return
}

func CommentUpdate(c *Comment) error {
	return db.Classify(db.Instance.Model(c).Omit(clause.Associations).Select("text").Updates(c).Error)
}

func CommentDelete(id uint64) error {
	result := db.Instance.Delete(&Comment{}, id)
	if result.Error != nil {
		return db.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
