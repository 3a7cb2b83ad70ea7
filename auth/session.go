package auth

import (
	"github.com/ioann7/api-yatube/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const userIdKey = "id"

type Session struct {
	sessions.Session
}

// LoadSession returns nil when the sessions middleware is not installed
func LoadSession(c *gin.Context) *Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return &Session{
		Session: sessions.Default(c),
	}
}

func (s *Session) LoginUser(user *models.User) error {
	s.Set(userIdKey, user.ID)
	return s.Save()
}

func (s *Session) LogoutUser() error {
	s.Delete(userIdKey)
	s.Clear()
	s.Options(sessions.Options{Path: "/", MaxAge: -1})
	return s.Save()
}

func (s *Session) UserID() uint64 {
	id, _ := s.Get(userIdKey).(uint64)
	return id
}

func (s *Session) User() (user models.User) {
	id := s.UserID()
	if id == 0 {
		return
	}
	user, err := models.UserByID(id)
	if err != nil {
		return models.User{}
	}
	return
}
