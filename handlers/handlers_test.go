package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ioann7/api-yatube/auth"
	"github.com/ioann7/api-yatube/db"
	"github.com/ioann7/api-yatube/models"
	"github.com/ioann7/api-yatube/storage"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
)

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	mediaDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tx, err := db.Open(sqlite.Open(db.SQLiteDSN(":memory:")))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, _ := tx.DB()
	sqlDB.SetMaxOpenConns(1)
	if err = models.Migrate(tx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	previous := db.Instance
	db.Instance = tx
	mediaDir := t.TempDir()
	storage.Use(storage.NewDiskStorage(mediaDir))
	t.Cleanup(func() {
		db.Instance = previous
		_ = sqlDB.Close()
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(sessions.Sessions("sessionid", cookie.NewStore([]byte("test session key"))))
	Register(router)
	return &testServer{t: t, router: router, mediaDir: mediaDir}
}

// user creates an account and returns it with an access token
func (s *testServer) user(username string, staff bool) (models.User, string) {
	s.t.Helper()
	u, err := models.UserCreate(username, "password123")
	if err != nil {
		s.t.Fatalf("UserCreate: %v", err)
	}
	if staff {
		if err = db.Instance.Model(&u).Update("is_staff", true).Error; err != nil {
			s.t.Fatalf("staff: %v", err)
		}
	}
	token, err := auth.IssueAccessToken(u.ID)
	if err != nil {
		s.t.Fatalf("token: %v", err)
	}
	return u, token
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 1, color.RGBA{R: 200, A: 255})
	}
	buf := bytes.Buffer{}
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestUserRegistrationAndJWT(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/users/", "", gin.H{"username": "alice", "password": "password123"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body)
	}
	w = s.do(http.MethodPost, "/api/v1/users/", "", gin.H{"username": "alice", "password": "password123"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register: %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/v1/users/", "", gin.H{"username": "bad name", "password": "password123"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid username: %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/v1/jwt/create/", "", gin.H{"username": "alice", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials: %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/v1/jwt/create/", "", gin.H{"username": "alice", "password": "password123"})
	if w.Code != http.StatusOK {
		t.Fatalf("jwt create: %d %s", w.Code, w.Body)
	}
	pair := auth.TokenPair{}
	decode(t, w, &pair)
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("token pair = %+v", pair)
	}

	tests := []struct {
		name string
		path string
		body gin.H
		want int
	}{
		{"verify access", "/api/v1/jwt/verify/", gin.H{"token": pair.Access}, http.StatusOK},
		{"verify garbage", "/api/v1/jwt/verify/", gin.H{"token": "not.a.token"}, http.StatusUnauthorized},
		{"refresh", "/api/v1/jwt/refresh/", gin.H{"refresh": pair.Refresh}, http.StatusOK},
		{"refresh with access token", "/api/v1/jwt/refresh/", gin.H{"refresh": pair.Access}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		if w = s.do(http.MethodPost, tt.path, "", tt.body); w.Code != tt.want {
			t.Errorf("%s: %d, want %d (%s)", tt.name, w.Code, tt.want, w.Body)
		}
	}

	// The access token authenticates writes
	w = s.do(http.MethodPost, "/api/v1/posts/", pair.Access, gin.H{"text": "hello"})
	if w.Code != http.StatusCreated {
		t.Errorf("post with token: %d %s", w.Code, w.Body)
	}
	w = s.do(http.MethodPost, "/api/v1/posts/", pair.Refresh, gin.H{"text": "hello"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("post with refresh token: %d", w.Code)
	}

	w = s.do(http.MethodDelete, "/api/v1/users/me/", pair.Access, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete me: %d", w.Code)
	}
	w = s.do(http.MethodGet, "/api/v1/posts/", "", nil)
	var posts []PostInfo
	decode(t, w, &posts)
	if len(posts) != 0 {
		t.Errorf("posts of deleted user still listed: %v", posts)
	}
}

func TestPostPermissions(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.user("alice", false)
	_, bobToken := s.user("bob", false)

	w := s.do(http.MethodPost, "/api/v1/posts/", "", gin.H{"text": "anonymous"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create: %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/v1/posts/", aliceToken, gin.H{"text": ""})
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty text: %d", w.Code)
	}
	w = s.do(http.MethodPost, "/api/v1/posts/", aliceToken, gin.H{"text": "alice's post"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	created := PostInfo{}
	decode(t, w, &created)
	if created.Author != "alice" || created.Text != "alice's post" || created.PubDate.IsZero() {
		t.Errorf("created = %+v", created)
	}
	path := "/api/v1/posts/" + strconv.FormatUint(created.ID, 10) + "/"

	tests := []struct {
		name   string
		method string
		token  string
		body   interface{}
		want   int
	}{
		{"anonymous read", http.MethodGet, "", nil, http.StatusOK},
		{"anonymous update", http.MethodPatch, "", gin.H{"text": "x"}, http.StatusUnauthorized},
		{"other user update", http.MethodPut, bobToken, gin.H{"text": "x"}, http.StatusForbidden},
		{"other user patch", http.MethodPatch, bobToken, gin.H{"text": "x"}, http.StatusForbidden},
		{"other user delete", http.MethodDelete, bobToken, nil, http.StatusForbidden},
		{"author patch", http.MethodPatch, aliceToken, gin.H{"text": "edited"}, http.StatusOK},
		{"author put without text", http.MethodPut, aliceToken, gin.H{}, http.StatusBadRequest},
		{"unknown group", http.MethodPatch, aliceToken, gin.H{"group": 42}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w = s.do(tt.method, path, tt.token, tt.body); w.Code != tt.want {
			t.Errorf("%s: %d, want %d (%s)", tt.name, w.Code, tt.want, w.Body)
		}
	}

	w = s.do(http.MethodGet, path, "", nil)
	post := PostInfo{}
	decode(t, w, &post)
	if post.Text != "edited" || !post.PubDate.Equal(created.PubDate) {
		t.Errorf("after patch = %+v", post)
	}

	if w = s.do(http.MethodDelete, path, aliceToken, nil); w.Code != http.StatusNoContent {
		t.Errorf("author delete: %d", w.Code)
	}
	if w = s.do(http.MethodGet, path, "", nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted post: %d", w.Code)
	}
	if w = s.do(http.MethodGet, "/api/v1/posts/abc/", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("bad id: %d", w.Code)
	}
}

func TestPostPagination(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("alice", false)
	for i := 0; i < 5; i++ {
		if w := s.do(http.MethodPost, "/api/v1/posts/", token, gin.H{"text": "post " + strconv.Itoa(i)}); w.Code != http.StatusCreated {
			t.Fatalf("create: %d", w.Code)
		}
	}

	w := s.do(http.MethodGet, "/api/v1/posts/", "", nil)
	var all []PostInfo
	decode(t, w, &all)
	if len(all) != 5 || all[0].Text != "post 4" {
		t.Fatalf("plain list = %v", all)
	}

	w = s.do(http.MethodGet, "/api/v1/posts/?limit=2&offset=2", "", nil)
	page := struct {
		Count    int64      `json:"count"`
		Next     *string    `json:"next"`
		Previous *string    `json:"previous"`
		Results  []PostInfo `json:"results"`
	}{}
	decode(t, w, &page)
	if page.Count != 5 || len(page.Results) != 2 || page.Results[0].Text != "post 2" {
		t.Errorf("page = %+v", page)
	}
	if page.Next == nil || !strings.Contains(*page.Next, "offset=4") {
		t.Errorf("next = %v", page.Next)
	}
	if page.Previous == nil || strings.Contains(*page.Previous, "offset") {
		t.Errorf("previous = %v", page.Previous)
	}

	w = s.do(http.MethodGet, "/api/v1/posts/?limit=2&offset=4", "", nil)
	decode(t, w, &page)
	if page.Next != nil || len(page.Results) != 1 {
		t.Errorf("last page = %+v", page)
	}

	if w = s.do(http.MethodGet, "/api/v1/posts/?limit=-1", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("negative limit: %d", w.Code)
	}
	if w = s.do(http.MethodGet, "/api/v1/posts/?limit=0", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("zero limit: %d", w.Code)
	}
	zero := 0
	if pr := (PageRequest{Limit: &zero}); pr.Paginated() {
		t.Error("zero limit paginates")
	}
}

func TestGroups(t *testing.T) {
	s := newTestServer(t)
	_, staffToken := s.user("admin", true)
	_, userToken := s.user("alice", false)

	group := gin.H{"title": "News", "slug": "news", "description": "Daily news"}
	if w := s.do(http.MethodPost, "/api/v1/groups/", userToken, group); w.Code != http.StatusForbidden {
		t.Errorf("regular user create: %d", w.Code)
	}
	w := s.do(http.MethodPost, "/api/v1/groups/", staffToken, group)
	if w.Code != http.StatusCreated {
		t.Fatalf("staff create: %d %s", w.Code, w.Body)
	}
	info := GroupInfo{}
	decode(t, w, &info)
	if w = s.do(http.MethodPost, "/api/v1/groups/", staffToken, group); w.Code != http.StatusBadRequest {
		t.Errorf("duplicate slug: %d", w.Code)
	}
	bad := gin.H{"title": "Bad", "slug": "bad slug", "description": "d"}
	if w = s.do(http.MethodPost, "/api/v1/groups/", staffToken, bad); w.Code != http.StatusBadRequest {
		t.Errorf("bad slug: %d", w.Code)
	}

	w = s.do(http.MethodPost, "/api/v1/posts/", userToken, gin.H{"text": "in news", "group": info.ID})
	if w.Code != http.StatusCreated {
		t.Fatalf("post in group: %d %s", w.Code, w.Body)
	}
	post := PostInfo{}
	decode(t, w, &post)

	w = s.do(http.MethodGet, "/api/v1/posts/?group="+strconv.FormatUint(info.ID, 10), "", nil)
	var inGroup []PostInfo
	decode(t, w, &inGroup)
	if len(inGroup) != 1 {
		t.Errorf("group filter = %v", inGroup)
	}

	groupPath := "/api/v1/groups/" + strconv.FormatUint(info.ID, 10) + "/"
	if w = s.do(http.MethodGet, groupPath, "", nil); w.Code != http.StatusOK {
		t.Errorf("group get: %d", w.Code)
	}
	if w = s.do(http.MethodDelete, groupPath, userToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("regular user delete: %d", w.Code)
	}
	if w = s.do(http.MethodDelete, groupPath, staffToken, nil); w.Code != http.StatusNoContent {
		t.Errorf("staff delete: %d", w.Code)
	}

	w = s.do(http.MethodGet, "/api/v1/posts/"+strconv.FormatUint(post.ID, 10)+"/", "", nil)
	reloaded := PostInfo{}
	decode(t, w, &reloaded)
	if reloaded.Group != nil || reloaded.Text != "in news" || reloaded.Author != "alice" {
		t.Errorf("post after group delete = %+v", reloaded)
	}
}

func TestComments(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.user("alice", false)
	_, bobToken := s.user("bob", false)

	w := s.do(http.MethodPost, "/api/v1/posts/", aliceToken, gin.H{"text": "post"})
	post := PostInfo{}
	decode(t, w, &post)
	commentsPath := "/api/v1/posts/" + strconv.FormatUint(post.ID, 10) + "/comments/"

	for _, text := range []string{"first", "second", "third"} {
		if w = s.do(http.MethodPost, commentsPath, bobToken, gin.H{"text": text}); w.Code != http.StatusCreated {
			t.Fatalf("comment: %d %s", w.Code, w.Body)
		}
	}
	if w = s.do(http.MethodPost, commentsPath, bobToken, gin.H{"text": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("empty comment: %d", w.Code)
	}
	if w = s.do(http.MethodPost, "/api/v1/posts/999/comments/", bobToken, gin.H{"text": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("comment on unknown post: %d", w.Code)
	}

	w = s.do(http.MethodGet, commentsPath, "", nil)
	var comments []CommentInfo
	decode(t, w, &comments)
	if len(comments) != 3 || comments[0].Text != "third" || comments[2].Text != "first" {
		t.Fatalf("comments = %+v", comments)
	}
	if comments[0].Author != "bob" || comments[0].Post != post.ID {
		t.Errorf("comment = %+v", comments[0])
	}

	commentPath := commentsPath + strconv.FormatUint(comments[0].ID, 10) + "/"
	tests := []struct {
		name   string
		method string
		token  string
		body   interface{}
		want   int
	}{
		{"read", http.MethodGet, "", nil, http.StatusOK},
		{"post author edits", http.MethodPatch, aliceToken, gin.H{"text": "x"}, http.StatusForbidden},
		{"comment author edits", http.MethodPut, bobToken, gin.H{"text": "edited"}, http.StatusOK},
		{"post author deletes", http.MethodDelete, aliceToken, nil, http.StatusForbidden},
		{"comment author deletes", http.MethodDelete, bobToken, nil, http.StatusNoContent},
		{"read deleted", http.MethodGet, "", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		if w = s.do(tt.method, commentPath, tt.token, tt.body); w.Code != tt.want {
			t.Errorf("%s: %d, want %d (%s)", tt.name, w.Code, tt.want, w.Body)
		}
	}
}

func TestFollow(t *testing.T) {
	s := newTestServer(t)
	_, aliceToken := s.user("alice", false)
	bob, bobToken := s.user("bob", false)
	s.user("bobby", false)

	tests := []struct {
		name      string
		token     string
		following string
		want      int
	}{
		{"anonymous", "", "bob", http.StatusUnauthorized},
		{"follow bob", aliceToken, "bob", http.StatusCreated},
		{"follow bob again", aliceToken, "bob", http.StatusBadRequest},
		{"follow self", aliceToken, "alice", http.StatusBadRequest},
		{"follow unknown", aliceToken, "nobody", http.StatusBadRequest},
		{"missing field", aliceToken, "", http.StatusBadRequest},
		{"follow bobby", aliceToken, "bobby", http.StatusCreated},
		{"bob follows alice", bobToken, "alice", http.StatusCreated},
	}
	for _, tt := range tests {
		w := s.do(http.MethodPost, "/api/v1/follow/", tt.token, gin.H{"following": tt.following})
		if w.Code != tt.want {
			t.Errorf("%s: %d, want %d (%s)", tt.name, w.Code, tt.want, w.Body)
		}
	}

	w := s.do(http.MethodGet, "/api/v1/follow/?search=bobb", aliceToken, nil)
	var follows []FollowInfo
	decode(t, w, &follows)
	if len(follows) != 1 || follows[0].Following != "bobby" || follows[0].User != "alice" {
		t.Errorf("search = %+v", follows)
	}

	if w = s.do(http.MethodPost, "/api/v1/posts/", bobToken, gin.H{"text": "from bob"}); w.Code != http.StatusCreated {
		t.Fatalf("post: %d", w.Code)
	}
	w = s.do(http.MethodGet, "/api/v1/feed/", aliceToken, nil)
	var feed []PostInfo
	decode(t, w, &feed)
	if len(feed) != 1 || feed[0].Author != bob.Username {
		t.Errorf("feed = %+v", feed)
	}

	if w = s.do(http.MethodDelete, "/api/v1/follow/bob/", aliceToken, nil); w.Code != http.StatusNoContent {
		t.Errorf("unfollow: %d", w.Code)
	}
	if w = s.do(http.MethodDelete, "/api/v1/follow/bob/", aliceToken, nil); w.Code != http.StatusNotFound {
		t.Errorf("second unfollow: %d", w.Code)
	}
	w = s.do(http.MethodGet, "/api/v1/feed/", aliceToken, nil)
	decode(t, w, &feed)
	if len(feed) != 0 {
		t.Errorf("feed after unfollow = %+v", feed)
	}
}

func TestPostImage(t *testing.T) {
	s := newTestServer(t)
	_, token := s.user("alice", false)

	if w := s.do(http.MethodPost, "/api/v1/posts/", token, gin.H{"text": "x", "image": "not an image"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad image: %d", w.Code)
	}

	w := s.do(http.MethodPost, "/api/v1/posts/", token, gin.H{"text": "with image", "image": pngDataURI(t)})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body)
	}
	post := PostInfo{}
	decode(t, w, &post)
	if post.Image == nil || !strings.HasPrefix(*post.Image, "/media/posts/") || !strings.HasSuffix(*post.Image, ".jpg") {
		t.Fatalf("image = %v", post.Image)
	}
	stored := strings.TrimPrefix(*post.Image, "/media/")
	if _, err := os.Stat(filepath.Join(s.mediaDir, stored)); err != nil {
		t.Fatalf("stored file: %v", err)
	}

	w = s.do(http.MethodGet, *post.Image, "", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/jpeg" {
		t.Errorf("media: %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	if w = s.do(http.MethodGet, "/media/../secret", "", nil); w.Code == http.StatusOK {
		t.Errorf("path traversal served")
	}

	// Clearing the image removes the file
	path := "/api/v1/posts/" + strconv.FormatUint(post.ID, 10) + "/"
	w = s.do(http.MethodPatch, path, token, gin.H{"image": nil})
	if w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body)
	}
	decode(t, w, &post)
	if post.Image != nil {
		t.Errorf("image after clearing = %v", *post.Image)
	}
	if _, err := os.Stat(filepath.Join(s.mediaDir, stored)); !os.IsNotExist(err) {
		t.Errorf("old image still stored: %v", err)
	}
}

func TestSessionLogin(t *testing.T) {
	s := newTestServer(t)
	s.user("alice", false)

	login := func(password string) *httptest.ResponseRecorder {
		return s.do(http.MethodPost, "/api/v1/auth/login/", "", gin.H{"username": "alice", "password": password})
	}
	if w := login("wrong password"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login: %d", w.Code)
	}
	w := login("password123")
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie")
	}

	withCookies := func(method, path string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}
	if w = withCookies(http.MethodPost, "/api/v1/posts/", `{"text": "via session"}`); w.Code != http.StatusCreated {
		t.Fatalf("post with session: %d %s", w.Code, w.Body)
	}
	post := PostInfo{}
	decode(t, w, &post)
	if post.Author != "alice" {
		t.Errorf("author = %q", post.Author)
	}

	if w = withCookies(http.MethodPost, "/api/v1/auth/logout/", ""); w.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", w.Code)
	}
	cookies = w.Result().Cookies()
	if w = withCookies(http.MethodPost, "/api/v1/posts/", `{"text": "after logout"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("post after logout: %d", w.Code)
	}
}
