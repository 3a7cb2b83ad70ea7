package main

import (
	"strings"
	"time"

	"github.com/ioann7/api-yatube/config"
	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/handlers"
	"github.com/ioann7/api-yatube/logger"
	"github.com/ioann7/api-yatube/models"
	"github.com/ioann7/api-yatube/monitoring"
	"github.com/ioann7/api-yatube/storage"
	"github.com/ioann7/api-yatube/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	logger.Init()
	if err := config.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	db.Init()
	models.Init()
	storage.Init()

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(monitoring.Middleware)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "PATCH", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))

	cookieStore := gormsessions.NewStore(db.Instance, true, []byte(config.SESSION_KEY))
	cookieStore.Options(sessions.Options{Path: "/", MaxAge: config.SESSION_TTL, HttpOnly: true})
	router.Use(sessions.Sessions(config.SESSION_NAME, cookieStore))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{"^/media/"})))
	}
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that

	handlers.Register(router)
	router.GET("/metrics", monitoring.Handler())

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	logrus.Fatalf("Server stopped: %v", err)
}
