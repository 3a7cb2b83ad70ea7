package db

import (
	"strings"
	"time"

	"github.com/ioann7/api-yatube/config"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var Instance *gorm.DB

func Init() {
	db, err := Open(Dialector())
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}

// Dialector picks the database from config: MySQL, then PostgreSQL, then SQLite
func Dialector() gorm.Dialector {
	if config.MYSQL_DSN != "" {
		logrus.Info("Using MySQL")
		return mysql.Open(config.MYSQL_DSN)
	}
	if config.POSTGRES_DSN != "" {
		logrus.Info("Using PostgreSQL")
		return postgres.Open(config.POSTGRES_DSN)
	}
	logrus.Infof("Using SQLite: %s", config.SQLITE_FILE)
	return sqlite.Open(SQLiteDSN(config.SQLITE_FILE))
}

// SQLiteDSN enables foreign keys for every connection; SQLite ignores them otherwise
// and none of the ON DELETE policies would fire.
func SQLiteDSN(file string) string {
	sep := "?"
	if strings.Contains(file, "?") {
		sep = "&"
	}
	return file + sep + "_foreign_keys=on"
}

func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
}
