package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/monitoring"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	NotFoundResponse     = Response{"not found"}
	ForbiddenResponse    = Response{"you do not have permission to perform this action"}
	DBErrorResponse      = Response{"DB error"}
	StorageErrorResponse = Response{"storage error"}
)

// respondError maps model errors to statuses: missing rows are 404, rejected
// constraints are 400, everything else is logged and reported as 500
func respondError(c *gin.Context, err error) {
	var ce *db.ConstraintError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, NotFoundResponse)
	case errors.As(err, &ce):
		monitoring.ConstraintViolations.WithLabelValues(violationKind(ce.Kind)).Inc()
		logrus.WithField("constraint", ce.Constraint).Debugf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusBadRequest, Response{violationMessage(ce.Kind)})
	default:
		logrus.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
	}
}

func violationKind(kind error) string {
	switch kind {
	case db.ErrUniqueViolation:
		return "unique"
	case db.ErrCheckViolation:
		return "check"
	case db.ErrForeignKeyViolation:
		return "foreign_key"
	case db.ErrNotNullViolation:
		return "not_null"
	}
	return "other"
}

func violationMessage(kind error) string {
	switch kind {
	case db.ErrUniqueViolation:
		return "object already exists"
	case db.ErrCheckViolation:
		return "object is not valid"
	case db.ErrForeignKeyViolation:
		return "referenced object does not exist"
	case db.ErrNotNullViolation:
		return "required field is missing"
	}
	return "bad request"
}

func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return 0, false
	}
	return id, true
}

// PageRequest follows the limit/offset convention: without "limit" the full list is returned.
// A present limit must be positive
type PageRequest struct {
	Limit  *int `form:"limit" binding:"omitempty,min=1"`
	Offset int  `form:"offset" binding:"omitempty,min=0"`
}

type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func (pr *PageRequest) Paginated() bool {
	return pr.Limit != nil && *pr.Limit > 0
}

func (pr *PageRequest) NewPage(c *gin.Context, count int64, results interface{}) Page {
	limit, offset := *pr.Limit, pr.Offset
	page := Page{Count: count, Results: results}
	if int64(offset+limit) < count {
		next := pageURL(c, limit, offset+limit)
		page.Next = &next
	}
	if offset > 0 {
		previous := pageURL(c, limit, offset-limit)
		page.Previous = &previous
	}
	return page
}

func pageURL(c *gin.Context, limit, offset int) string {
	u := url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   c.Request.URL.Path,
	}
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	query := c.Request.URL.Query()
	query.Set("limit", strconv.Itoa(limit))
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	} else {
		query.Del("offset")
	}
	u.RawQuery = query.Encode()
	return u.String()
}
