package server

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"puppytalk/internal/config"
	"puppytalk/internal/middleware"
	"puppytalk/internal/models"
	"puppytalk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadResult struct {
	ImageID uint   `json:"imageId"`
	URL     string `json:"url"`
}

// upload posts data as the "image" part with the given part content type.
func (ts *testServer) upload(t *testing.T, query, filename, contentType string, data []byte, session string) result {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, imageField, filename))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media/images"+query, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if session != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: session})
	}
	return ts.send(t, req)
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(t)
	u := testutil.CreateUser(t, ts.db)
	session := ts.login(t, u)

	res := ts.upload(t, "?type=profile", "buddy.png", "image/png", testutil.TinyPNG(t, 3, 3), session)
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	assert.Equal(t, models.CodeImageUploaded, res.Code)
	out := decode[uploadResult](t, res)
	assert.NotZero(t, out.ImageID)
	assert.True(t, strings.HasPrefix(out.URL, "http://127.0.0.1:8000/upload/profile/"), out.URL)

	var img models.Image
	require.NoError(t, ts.db.First(&img, out.ImageID).Error)
	require.NotNil(t, img.UploaderID)
	assert.Equal(t, u.ID, *img.UploaderID)

	// The stored file is served back from /upload.
	key := strings.TrimPrefix(out.URL, "http://127.0.0.1:8000/upload/")
	_, err := os.Stat(filepath.Join(ts.store.Dir, key))
	require.NoError(t, err)
	served := ts.do(t, http.MethodGet, "/upload/"+key, nil, "")
	assert.Equal(t, http.StatusOK, served.Status)
	assert.Equal(t, testutil.TinyPNG(t, 3, 3), served.Raw)
}

func TestUploadImageAnonymousForSignup(t *testing.T) {
	ts := newTestServer(t)

	res := ts.upload(t, "", "pic.png", "image/png", testutil.TinyPNG(t, 2, 2), "")
	require.Equal(t, http.StatusCreated, res.Status, string(res.Raw))
	out := decode[uploadResult](t, res)
	assert.Contains(t, out.URL, "/upload/post/", "post is the default folder")

	signup := ts.do(t, http.MethodPost, "/api/v1/auth/signup", map[string]any{
		"email":          testutil.UniqueEmail(),
		"password":       "Puppy123!",
		"nickname":       testutil.UniqueNickname(),
		"profileImageId": out.ImageID,
	}, "")
	assert.Equal(t, http.StatusCreated, signup.Status, string(signup.Raw))
}

func TestUploadImageRejections(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.MaxFileSize = 512 })
	png := testutil.TinyPNG(t, 2, 2)

	tests := []struct {
		name        string
		query       string
		contentType string
		data        []byte
		code        models.Code
	}{
		{"bad folder", "?type=avatar", "image/png", png, models.CodeInvalidUploadType},
		{"no file", "", "", nil, models.CodeMissingRequiredField},
		{"disallowed type", "", "image/gif", png, models.CodeInvalidFileType},
		{"empty file", "", "image/png", []byte{}, models.CodeInvalidImageFile},
		{"too large", "", "image/png", make([]byte, 513), models.CodeFileSizeExceeded},
		{"not an image", "", "image/png", []byte("definitely text"), models.CodeInvalidImageFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ts.upload(t, tt.query, "f.png", tt.contentType, tt.data, "")
			assert.Equal(t, http.StatusBadRequest, res.Status, string(res.Raw))
			assert.Equal(t, tt.code, res.Code)
		})
	}
}

func TestDeleteImage(t *testing.T) {
	ts := newTestServer(t)
	owner := testutil.CreateUser(t, ts.db)
	other := testutil.CreateUser(t, ts.db)
	ownerSession := ts.login(t, owner)

	out := decode[uploadResult](t, ts.upload(t, "", "a.png", "image/png", testutil.TinyPNG(t, 2, 2), ownerSession))
	path := fmt.Sprintf("/api/v1/media/images/%d", out.ImageID)

	res := ts.do(t, http.MethodDelete, path, nil, ts.login(t, other))
	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Equal(t, models.CodeImageNotFound, res.Code)

	res = ts.do(t, http.MethodDelete, path, nil, ownerSession)
	assert.Equal(t, http.StatusNoContent, res.Status)

	res = ts.do(t, http.MethodDelete, path, nil, ownerSession)
	assert.Equal(t, models.CodeImageNotFound, res.Code)

	res = ts.do(t, http.MethodDelete, "/api/v1/media/images/zero", nil, ownerSession)
	assert.Equal(t, models.CodeInvalidImageIDFormat, res.Code)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodDelete, path, nil, "").Status)
}
