package models

import (
	"time"

	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Post struct {
	ID       uint64    `gorm:"primaryKey"`
	Text     string    `gorm:"type:text;not null"`
	PubDate  time.Time `gorm:"<-:create;not null;index"`
	AuthorID uint64    `gorm:"not null;index"`
	Author   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Image    *string   `gorm:"type:varchar(255)"` // path inside the media storage, e.g. posts/<uuid>.jpg
	GroupID  *uint64   `gorm:"index"`
	Group    *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

const PostOrder = "pub_date DESC, id DESC"

type PostFilter struct {
	GroupID    uint64
	AuthorID   uint64
	FollowedBy uint64 // posts of the accounts this user follows
	Limit      int    // 0 - no limit
	Offset     int
}

func (p Post) String() string {
	return utils.Truncate(p.Text, 15)
}

// BeforeCreate assigns pub_date, the column is never written again afterwards
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	p.PubDate = time.Now().UTC()
	return nil
}

func PostCreate(p *Post) error {
	return db.Classify(db.Instance.Omit(clause.Associations).Create(p).Error)
}

func PostByID(id uint64) (p Post, err error) {
	err = db.Instance.Preload("Author").Preload("Group").First(&p, id).Error
	return
}

// PostList returns a page of posts (newest first) and the total count for the filter
func PostList(filter PostFilter) (posts []Post, count int64, err error) {
	tx := db.Instance.Model(&Post{})
	if filter.GroupID != 0 {
		tx = tx.Where("group_id = ?", filter.GroupID)
	}
	if filter.AuthorID != 0 {
		tx = tx.Where("author_id = ?", filter.AuthorID)
	}
	if filter.FollowedBy != 0 {
		tx = tx.Where("author_id IN (?)", db.Instance.Model(&Follow{}).Select("following_id").Where("user_id = ?", filter.FollowedBy))
	}
	tx = tx.Session(&gorm.Session{})
	if err = tx.Count(&count).Error; err != nil {
		return nil, 0, err
	}
	page := tx.Preload("Author").Preload("Group").Order(PostOrder)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	err = page.Find(&posts).Error
	return
}

// PostUpdate writes the editable columns only. Author and pub_date stay as created
func PostUpdate(p *Post) error {
	return db.Classify(db.Instance.Model(p).Omit(clause.Associations).Select("text", "group_id", "image").Updates(p).Error)
}

func PostDelete(id uint64) error {
	result := db.Instance.Delete(&Post{}, id)
	if result.Error != nil {
		return db.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FeedForUser lists the posts written by the accounts userID follows, newest first
func FeedForUser(userID uint64, limit, offset int) (posts []Post, count int64, err error) {
	return PostList(PostFilter{FollowedBy: userID, Limit: limit, Offset: offset})
}
