package models

import (
	"fmt"

	"github.com/ioann7/api-yatube/db"

	"gorm.io/gorm"
)

// Names of the storage level rules declared in the model tags
const (
	UsernameUniqueIndex   = "uniq_username"
	GroupSlugUniqueIndex  = "uniq_group_slug"
	FollowUniqueIndex     = "unique_follow"
	FollowCheckConstraint = "user_not_equal_following"
)

type schemaObject struct {
	model interface{}
	name  string // index/constraint name, or the relation field for foreign keys
}

type followTrigger struct {
	name   string
	create string
}

// followCheckTriggers replace the user_not_equal_following CHECK on MySQL. The signalled
// message is the rule name, db.Classify reports it as db.ErrCheckViolation.
var followCheckTriggers = []followTrigger{
	{"follows_user_not_equal_following_insert", followTriggerSQL("follows_user_not_equal_following_insert", "INSERT")},
	{"follows_user_not_equal_following_update", followTriggerSQL("follows_user_not_equal_following_update", "UPDATE")},
}

func followTriggerSQL(name, event string) string {
	return "CREATE TRIGGER " + name + " BEFORE " + event + " ON follows FOR EACH ROW " +
		"BEGIN IF NEW.user_id = NEW.following_id THEN " +
		"SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = '" + FollowCheckConstraint + "'; " +
		"END IF; END"
}

func isMySQL(tx *gorm.DB) bool {
	return tx.Dialector.Name() == "mysql"
}

// followModel is the struct the follows table is migrated from
func followModel(mysql bool) interface{} {
	if mysql {
		return &followNoCheck{}
	}
	return &Follow{}
}

// schemaRules lists the indexes and constraints the service relies on.
// Foreign keys carry their ON DELETE policy: CASCADE everywhere except Post.Group (SET NULL)
func schemaRules(mysql bool) (indexes, constraints []schemaObject) {
	follow := followModel(mysql)
	indexes = []schemaObject{
		{&User{}, UsernameUniqueIndex},
		{&Group{}, GroupSlugUniqueIndex},
		{follow, FollowUniqueIndex},
	}
	constraints = []schemaObject{
		{&Post{}, "Author"},
		{&Post{}, "Group"},
		{&Comment{}, "Author"},
		{&Comment{}, "Post"},
		{follow, "User"},
		{follow, "Following"},
	}
	if !mysql {
		constraints = append(constraints, schemaObject{follow, FollowCheckConstraint})
	}
	return
}

func Init() {
	if err := Migrate(db.Instance); err != nil {
		panic(err)
	}
}

// Migrate creates the tables together with their foreign keys, the unique indexes and the
// check constraints declared in the struct tags. Referenced tables go first.
// Rules missing from an older schema are added afterwards.
func Migrate(tx *gorm.DB) error {
	mysql := isMySQL(tx)
	err := tx.AutoMigrate(
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		followModel(mysql),
	)
	if err != nil {
		return err
	}
	if err = ensureSchema(tx, mysql); err != nil {
		return err
	}
	if mysql {
		return ensureFollowTriggers(tx)
	}
	return nil
}

func ensureSchema(tx *gorm.DB, mysql bool) error {
	indexes, constraints := schemaRules(mysql)
	migrator := tx.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("index %s: %w", idx.name, err)
		}
	}
	for _, c := range constraints {
		if migrator.HasConstraint(c.model, c.name) {
			continue
		}
		if err := migrator.CreateConstraint(c.model, c.name); err != nil {
			return fmt.Errorf("constraint %s: %w", c.name, err)
		}
	}
	return nil
}

func ensureFollowTriggers(tx *gorm.DB) error {
	for _, trigger := range followCheckTriggers {
		var count int64
		err := tx.Raw("SELECT COUNT(*) FROM information_schema.triggers WHERE trigger_schema = DATABASE() AND trigger_name = ?", trigger.name).
			Scan(&count).Error
		if err != nil {
			return fmt.Errorf("trigger %s: %w", trigger.name, err)
		}
		if count > 0 {
			continue
		}
		if err = tx.Exec(trigger.create).Error; err != nil {
			return fmt.Errorf("trigger %s: %w", trigger.name, err)
		}
	}
	return nil
}
