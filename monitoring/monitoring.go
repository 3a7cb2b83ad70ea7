package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_posts_created_total",
		Help: "Total posts created",
	})

	CommentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_comments_created_total",
		Help: "Total comments created",
	})

	FollowsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "yatube_follows_created_total",
		Help: "Total follow relationships created",
	})

	ConstraintViolations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_constraint_violations_total",
		Help: "Writes rejected by the database constraints",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(CommentsCreated)
	prometheus.MustRegister(FollowsCreated)
	prometheus.MustRegister(ConstraintViolations)
}

// Middleware tracks request timing and status code per route pattern
func Middleware(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	RequestDuration.
		WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
		Observe(time.Since(start).Seconds())
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
