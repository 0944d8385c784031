package server

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"puppytalk/internal/models"
	"puppytalk/internal/service"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetPost(t *testing.T) {
	ts := newTestServer(t)
	u := testutil.CreateUser(t, ts.db)
	session := ts.login(t, u)
	a := testutil.CreateImage(t, ts.db, u.ID)
	b := testutil.CreateImage(t, ts.db, u.ID)

	res := ts.do(t, http.MethodPost, "/api/v1/posts",
		map[string]any{"title": "산책", "content": "park day", "imageIds": []uint{a.ID, b.ID}}, session)
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, models.CodePostUploaded, res.Code)
	postID := decode[map[string]uint](t, res)["postId"]
	require.NotZero(t, postID)

	res = ts.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", postID), nil, "")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, models.CodePostRetrieved, res.Code)
	view := decode[models.PostView](t, res)
	assert.Equal(t, "산책", view.Title)
	assert.Equal(t, u.Nickname, view.Author.Nickname)
	require.Len(t, view.Files, 2)
	assert.Equal(t, a.ID, view.Files[0].ImageID)
	assert.Equal(t, a.FileURL, view.Files[0].FileURL)
}

func TestCreatePostValidation(t *testing.T) {
	ts := newTestServer(t)
	u := testutil.CreateUser(t, ts.db)
	session := ts.login(t, u)

	tests := []struct {
		name string
		body any
		code models.Code
	}{
		{"missing title", map[string]any{"content": "x"}, models.CodeMissingRequiredField},
		{"missing content", map[string]any{"title": "x"}, models.CodeMissingRequiredField},
		{"empty title", map[string]any{"title": "", "content": "x"}, models.CodeInvalidTitleFormat},
		{"long title", map[string]any{"title": strings.Repeat("가", 27), "content": "x"}, models.CodeInvalidTitleFormat},
		{"empty content", map[string]any{"title": "x", "content": ""}, models.CodeInvalidContentFormat},
		{"too many images", map[string]any{"title": "x", "content": "x", "imageIds": []uint{1, 2, 3, 4, 5, 6}}, models.CodePostFileLimitExceeded},
		{"unknown image", map[string]any{"title": "x", "content": "x", "imageIds": []uint{9999}}, models.CodeInvalidImageID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.do(t, http.MethodPost, "/api/v1/posts", tt.body, session)
			assert.Equal(t, http.StatusBadRequest, res.Status)
			assert.Equal(t, tt.code, res.Code, string(res.Raw))
		})
	}

	res := ts.do(t, http.MethodPost, "/api/v1/posts", map[string]any{"title": "x", "content": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestListPosts(t *testing.T) {
	ts := newTestServer(t)
	u := testutil.CreateUser(t, ts.db)
	var ids []uint
	for range 3 {
		ids = append(ids, testutil.CreatePost(t, ts.db, u.ID).ID)
	}

	res := ts.do(t, http.MethodGet, "/api/v1/posts?page=1&size=2", nil, "")
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, models.CodePostsRetrieved, res.Code)
	page := decode[service.PostPage](t, res)
	require.Len(t, page.Posts, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, ids[2], page.Posts[0].PostID, "newest first")

	page = decode[service.PostPage](t, ts.do(t, http.MethodGet, "/api/v1/posts?page=2&size=2", nil, ""))
	require.Len(t, page.Posts, 1)
	assert.False(t, page.HasMore)

	res = ts.do(t, http.MethodGet, "/api/v1/posts?page=9", nil, "")
	assert.JSONEq(t, `{"posts":[],"hasMore":false}`, string(res.Data))

	for _, q := range []string{"page=0", "size=0", "size=101", "page=abc"} {
		res := ts.do(t, http.MethodGet, "/api/v1/posts?"+q, nil, "")
		assert.Equal(t, http.StatusBadRequest, res.Status, q)
		assert.Equal(t, models.CodeInvalidPagination, res.Code, q)
	}
}

func TestGetPostErrors(t *testing.T) {
	ts := newTestServer(t)
	res := ts.do(t, http.MethodGet, "/api/v1/posts/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, res.Status)
	assert.Equal(t, models.CodeInvalidPostIDFormat, res.Code)

	res = ts.do(t, http.MethodGet, "/api/v1/posts/777", nil, "")
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, models.CodePostNotFound, res.Code)
}

func TestRecordPostView(t *testing.T) {
	ts := newTestServer(t)
	u := testutil.CreateUser(t, ts.db)
	p := testutil.CreatePost(t, ts.db, u.ID)
	path := fmt.Sprintf("/api/v1/posts/%d", p.ID)

	for range 2 {
		res := ts.do(t, http.MethodPost, path+"/view", nil, "")
		require.Equal(t, http.StatusNoContent, res.Status)
	}
	view := decode[models.PostView](t, ts.do(t, http.MethodGet, path, nil, ""))
	assert.Equal(t, int64(2), view.Hits)

	assert.Equal(t, models.CodePostNotFound, ts.do(t, http.MethodPost, "/api/v1/posts/4040/view", nil, "").Code)
}

func TestUpdatePost(t *testing.T) {
	ts := newTestServer(t)
	author := testutil.CreateUser(t, ts.db)
	stranger := testutil.CreateUser(t, ts.db)
	keep := testutil.CreateImage(t, ts.db, author.ID)
	drop := testutil.CreateImage(t, ts.db, author.ID)
	added := testutil.CreateImage(t, ts.db, author.ID)
	p := testutil.CreatePost(t, ts.db, author.ID, keep, drop)
	path := fmt.Sprintf("/api/v1/posts/%d", p.ID)

	authorSession := ts.login(t, author)
	strangerSession := ts.login(t, stranger)

	res := ts.do(t, http.MethodPatch, path, map[string]any{"title": "hijack"}, strangerSession)
	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.Equal(t, models.CodeForbidden, res.Code)

	res = ts.do(t, http.MethodPatch, "/api/v1/posts/9999", map[string]any{"title": "x"}, authorSession)
	assert.Equal(t, models.CodePostNotFound, res.Code)

	// Title only: attachments are untouched.
	res = ts.do(t, http.MethodPatch, path, map[string]any{"title": "edited"}, authorSession)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	assert.Equal(t, models.CodePostUpdated, res.Code)
	view := decode[models.PostView](t, res)
	assert.Equal(t, "edited", view.Title)
	assert.Equal(t, p.Content, view.Content)
	assert.Len(t, view.Files, 2)

	res = ts.do(t, http.MethodPatch, path, map[string]any{"imageIds": []uint{keep.ID, added.ID}}, authorSession)
	require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
	view = decode[models.PostView](t, res)
	require.Len(t, view.Files, 2)
	var imageIDs []uint
	for _, f := range view.Files {
		imageIDs = append(imageIDs, f.ImageID)
	}
	assert.ElementsMatch(t, []uint{keep.ID, added.ID}, imageIDs)

	// An explicit empty list clears the attachments.
	res = ts.do(t, http.MethodPatch, path, map[string]any{"imageIds": []uint{}}, authorSession)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, decode[models.PostView](t, res).Files)

	res = ts.do(t, http.MethodPatch, path, map[string]any{"title": strings.Repeat("a", 27)}, authorSession)
	assert.Equal(t, models.CodeInvalidTitleFormat, res.Code)
}

func TestDeletePost(t *testing.T) {
	ts := newTestServer(t)
	author := testutil.CreateUser(t, ts.db)
	stranger := testutil.CreateUser(t, ts.db)
	p := testutil.CreatePost(t, ts.db, author.ID)
	path := fmt.Sprintf("/api/v1/posts/%d", p.ID)

	res := ts.do(t, http.MethodDelete, path, nil, ts.login(t, stranger))
	assert.Equal(t, http.StatusForbidden, res.Status)

	authorSession := ts.login(t, author)
	res = ts.do(t, http.MethodDelete, path, nil, authorSession)
	require.Equal(t, http.StatusNoContent, res.Status)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, path, nil, "").Status)
	assert.Equal(t, models.CodePostNotFound, ts.do(t, http.MethodDelete, path, nil, authorSession).Code)
}

func TestLikeAndUnlike(t *testing.T) {
	ts := newTestServer(t)
	author := testutil.CreateUser(t, ts.db)
	fan := testutil.CreateUser(t, ts.db)
	p := testutil.CreatePost(t, ts.db, author.ID)
	path := fmt.Sprintf("/api/v1/posts/%d/likes", p.ID)
	session := ts.login(t, fan)

	res := ts.do(t, http.MethodPost, path, nil, session)
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, models.CodePostLikeUploaded, res.Code)
	assert.JSONEq(t, `{"likeCount":1}`, string(res.Data))

	res = ts.do(t, http.MethodPost, path, nil, session)
	assert.Equal(t, http.StatusConflict, res.Status)
	assert.Equal(t, models.CodeAlreadyLiked, res.Code)

	res = ts.do(t, http.MethodPost, path, nil, ts.login(t, author))
	assert.JSONEq(t, `{"likeCount":2}`, string(res.Data))

	res = ts.do(t, http.MethodDelete, path, nil, session)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Equal(t, models.CodeLikeDeleted, res.Code)
	assert.JSONEq(t, `{"likeCount":1}`, string(res.Data))

	res = ts.do(t, http.MethodDelete, path, nil, session)
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, models.CodeLikeNotFound, res.Code)

	res = ts.do(t, http.MethodPost, "/api/v1/posts/5555/likes", nil, session)
	assert.Equal(t, models.CodePostNotFound, res.Code)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, path, nil, "").Status)
}

func TestGetPostIsLiked(t *testing.T) {
	ts := newTestServer(t)
	author := testutil.CreateUser(t, ts.db)
	fan := testutil.CreateUser(t, ts.db)
	p := testutil.CreatePost(t, ts.db, author.ID)
	path := fmt.Sprintf("/api/v1/posts/%d", p.ID)
	fanSession := ts.login(t, fan)

	isLiked := func(session string) bool {
		t.Helper()
		res := ts.do(t, http.MethodGet, path, nil, session)
		require.Equal(t, http.StatusOK, res.Status, string(res.Raw))
		return decode[models.PostDetail](t, res).IsLiked
	}

	assert.False(t, isLiked(fanSession))
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, path+"/likes", nil, fanSession).Status)
	assert.True(t, isLiked(fanSession))
	assert.False(t, isLiked(ts.login(t, author)), "the flag is per caller")
	assert.False(t, isLiked(""), "anonymous callers never like")
	assert.False(t, isLiked("stale-token"), "an unknown session reads anonymously")
}
