package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CacheNoCache = 0
	CacheCustom  = -1 // the handler sets its own header
)

// CacheRouter sets cache-control on every response of the routes it is attached to
type CacheRouter struct {
	CacheTime int  // seconds, defaults to CacheNoCache
	Public    bool // shared caches may keep the response too (media files)
}

func (cr *CacheRouter) header() string {
	switch {
	case cr.CacheTime == CacheCustom:
		return ""
	case cr.CacheTime <= CacheNoCache:
		return "no-cache"
	case cr.Public:
		return "public, max-age=" + strconv.Itoa(cr.CacheTime)
	}
	return "private, max-age=" + strconv.Itoa(cr.CacheTime)
}

func (cr *CacheRouter) Handler() gin.HandlerFunc {
	value := cr.header()
	return func(c *gin.Context) {
		if value != "" {
			c.Header("cache-control", value)
		}
		c.Next()
	}
}
