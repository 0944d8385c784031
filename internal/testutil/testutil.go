// Package testutil provides shared fixtures for backend tests: an in-memory
// sqlite database with the full schema and helpers that insert rows.
package testutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync/atomic"
	"testing"

	"puppytalk/internal/database"
	"puppytalk/internal/models"
	"puppytalk/internal/security"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plaintext password of every user created by CreateUser.
const Password = "Puppy123!"

var (
	seq        atomic.Int64
	hasher     = security.NewHasher(bcrypt.MinCost)
	passwdHash string
)

func init() {
	h, err := hasher.Hash(Password)
	if err != nil {
		panic(err)
	}
	passwdHash = h
}

// NewDB opens a private in-memory sqlite database with every table migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Hasher returns a bcrypt hasher at minimum cost.
func Hasher() *security.Hasher {
	return hasher
}

// UniqueNickname returns a nickname that passes validation and has not been
// handed out before in this process.
func UniqueNickname() string {
	return fmt.Sprintf("pup%d", seq.Add(1))
}

// UniqueEmail returns a fresh lower-case address.
func UniqueEmail() string {
	return fmt.Sprintf("dog%d.%d@example.com", seq.Add(1), gofakeit.Number(1000, 9999))
}

// CreateUser inserts a user whose password is Password.
func CreateUser(t testing.TB, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		Email:        UniqueEmail(),
		PasswordHash: passwdHash,
		Nickname:     UniqueNickname(),
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateImage inserts an image row. uploaderID may be 0 for an anonymous upload.
func CreateImage(t testing.TB, db *gorm.DB, uploaderID uint) *models.Image {
	t.Helper()
	key := fmt.Sprintf("%s/%s.png", models.ImageFolderPost, gofakeit.UUID())
	img := &models.Image{
		FileKey:     key,
		FileURL:     "http://127.0.0.1:8000/upload/" + key,
		ContentType: "image/png",
		Size:        64,
	}
	if uploaderID != 0 {
		img.UploaderID = &uploaderID
	}
	if err := db.Create(img).Error; err != nil {
		t.Fatalf("create image: %v", err)
	}
	return img
}

// CreatePost inserts a post by userID with the given images attached.
func CreatePost(t testing.TB, db *gorm.DB, userID uint, images ...*models.Image) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:  userID,
		Title:   fmt.Sprintf("walk %d", seq.Add(1)),
		Content: gofakeit.Sentence(8),
	}
	if err := db.Omit("User", "Images").Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	for _, img := range images {
		pi := models.PostImage{PostID: p.ID, ImageID: img.ID, FileURL: img.FileURL}
		if err := db.Create(&pi).Error; err != nil {
			t.Fatalf("attach image: %v", err)
		}
		p.Images = append(p.Images, pi)
	}
	return p
}

// CreateComment inserts a comment and bumps the post's comment_count.
func CreateComment(t testing.TB, db *gorm.DB, postID, userID uint) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, UserID: userID, Content: gofakeit.Sentence(5)}
	if err := db.Omit("User").Create(c).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if err := db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
		t.Fatalf("bump comment_count: %v", err)
	}
	return c
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
