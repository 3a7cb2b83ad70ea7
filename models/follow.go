package models

import (
	"github.com/ioann7/api-yatube/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Follow is a directed (follower, followee) pair. Both rules live in the database:
// the unique_follow index rejects a second identical pair and the
// user_not_equal_following check rejects self-follows, so concurrent inserts
// cannot slip past them.
type Follow struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"not null;index:unique_follow,priority:1,unique"`
	User        User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FollowingID uint64 `gorm:"not null;index:unique_follow,priority:2,unique;index;check:user_not_equal_following,user_id <> following_id"`
	Following   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// followNoCheck is the follows table as created on MySQL. MySQL rejects a CHECK on a column
// that a foreign key referential action uses (error 3823), so there the self-follow rule is
// kept by the triggers from followCheckTriggers. Everything else matches Follow.
type followNoCheck struct {
	ID          uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"not null;index:unique_follow,priority:1,unique"`
	User        User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	FollowingID uint64 `gorm:"not null;index:unique_follow,priority:2,unique;index"`
	Following   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (followNoCheck) TableName() string {
	return "follows"
}

// FollowCreate returns db.ErrUniqueViolation for a repeated pair and
// db.ErrCheckViolation when userID == followingID
func FollowCreate(userID, followingID uint64) (f Follow, err error) {
	f.UserID = userID
	f.FollowingID = followingID
	err = db.Classify(db.Instance.Omit(clause.Associations).Create(&f).Error)
	return
}

// FollowList returns the follows of userID, optionally narrowed down by a substring of the followee's username
func FollowList(userID uint64, search string) (follows []Follow, err error) {
	tx := db.Instance.Preload("User").Preload("Following").Where("user_id = ?", userID)
	if search != "" {
		tx = tx.Where("following_id IN (?)", db.Instance.Model(&User{}).Select("id").Where("username LIKE ?", "%"+search+"%"))
	}
	err = tx.Order("id").Find(&follows).Error
	return
}

func IsFollowing(userID, followingID uint64) (bool, error) {
	var count int64
	err := db.Instance.Model(&Follow{}).Where("user_id = ? AND following_id = ?", userID, followingID).Count(&count).Error
	return count > 0, err
}

func FollowDelete(userID, followingID uint64) error {
	result := db.Instance.Where("user_id = ? AND following_id = ?", userID, followingID).Delete(&Follow{})
	if result.Error != nil {
		return db.Classify(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
