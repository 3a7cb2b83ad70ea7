package handlers

import (
	"github.com/ioann7/api-yatube/auth"
	"github.com/ioann7/api-yatube/models"
	"github.com/ioann7/api-yatube/utils"

	"github.com/gin-gonic/gin"
)

// Register wires the /api/v1 surface and the media files onto router
func Register(router *gin.Engine) {
	api := router.Group("/api/v1")
	// Custom Auth Router
	authRouter := &auth.Router{Base: api}

	// Users & tokens
	api.POST("/users/", UserCreate)
	authRouter.DELETE("/users/me/", UserDeleteMe)
	api.POST("/jwt/create/", JWTCreate)
	api.POST("/jwt/refresh/", JWTRefresh)
	api.POST("/jwt/verify/", JWTVerify)
	api.POST("/auth/login/", UserLogin)
	authRouter.POST("/auth/logout/", UserLogout)
	// Posts
	api.GET("/posts/", PostList)
	authRouter.POST("/posts/", PostCreate)
	api.GET("/posts/:post_id/", PostGet)
	authRouter.PUT("/posts/:post_id/", PostUpdate)
	authRouter.PATCH("/posts/:post_id/", PostPartialUpdate)
	authRouter.DELETE("/posts/:post_id/", PostDelete)
	// Comments
	api.GET("/posts/:post_id/comments/", CommentList)
	authRouter.POST("/posts/:post_id/comments/", CommentCreate)
	api.GET("/posts/:post_id/comments/:comment_id/", CommentGet)
	authRouter.PUT("/posts/:post_id/comments/:comment_id/", CommentUpdate)
	authRouter.PATCH("/posts/:post_id/comments/:comment_id/", CommentPartialUpdate)
	authRouter.DELETE("/posts/:post_id/comments/:comment_id/", CommentDelete)
	// Groups
	api.GET("/groups/", GroupList)
	api.GET("/groups/:group_id/", GroupGet)
	authRouter.POST("/groups/", GroupCreate, models.PermissionStaff)
	authRouter.DELETE("/groups/:group_id/", GroupDelete, models.PermissionStaff)
	// Follows
	authRouter.GET("/follow/", FollowList)
	authRouter.POST("/follow/", FollowCreate)
	authRouter.DELETE("/follow/:username/", FollowDelete)
	authRouter.GET("/feed/", Feed)

	// Post images, they never change once stored
	media := router.Group("/media")
	media.Use((&utils.CacheRouter{CacheTime: 86400, Public: true}).Handler())
	media.GET("/*path", MediaServe)
}
