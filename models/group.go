package models

import (
	"errors"
	"regexp"

	"github.com/ioann7/api-yatube/db"

	"gorm.io/gorm"
)

type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	Title       string `gorm:"type:varchar(200);not null"`
	Slug        string `gorm:"type:varchar(50);index:uniq_group_slug,unique;not null"`
	Description string `gorm:"type:text;not null"`
}

const (
	GroupTitleMaxLength = 200
	GroupSlugMaxLength  = 50
)

var (
	slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	ErrInvalidSlug       = errors.New("slug must be up to 50 latin letters, digits, hyphens or underscores")
	ErrGroupTitleTooLong = errors.New("title is longer than 200 characters")
	ErrInvalidGroup      = errors.New("title, slug and description are required")
)

func (g Group) String() string {
	return g.Title
}

func (g *Group) Validate() error {
	if g.Title == "" || g.Slug == "" || g.Description == "" {
		return ErrInvalidGroup
	}
	if len([]rune(g.Title)) > GroupTitleMaxLength {
		return ErrGroupTitleTooLong
	}
	if len(g.Slug) > GroupSlugMaxLength || !slugPattern.MatchString(g.Slug) {
		return ErrInvalidSlug
	}
	return nil
}

// GroupCreate fails with db.ErrUniqueViolation when the slug is taken
func GroupCreate(g *Group) error {
	if err := g.Validate(); err != nil {
		return err
	}
	return db.Classify(db.Instance.Create(g).Error)
}

func GroupList() (groups []Group, err error) {
	err = db.Instance.Order("id").Find(&groups).Error
	return
}

func GroupByID(id uint64) (g Group, err error) {
	err = db.Instance.First(&g, id).Error
	return
}

func GroupBySlug(slug string) (g Group, err error) {
	err = db.Instance.First(&g, "slug = ?", slug).Error
	return
}

// GroupDelete leaves the posts in place, their group_id is set to NULL by the database
func GroupDelete(id uint64) error {
	result := db.Instance.Delete(&Group{}, id)
	if result.Error != nil {
		return db.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
