package models

import "time"

// AuthorInfo is the public identity shown next to posts and comments.
type AuthorInfo struct {
	UserID          uint   `json:"userId"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// FileInfo describes one post attachment.
type FileInfo struct {
	FileID  uint   `json:"fileId"`
	FileURL string `json:"fileUrl"`
	ImageID uint   `json:"imageId"`
}

// PostView is the wire shape of a post.
type PostView struct {
	PostID       uint       `json:"postId"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Hits         int64      `json:"hits"`
	LikeCount    int64      `json:"likeCount"`
	CommentCount int64      `json:"commentCount"`
	Author       AuthorInfo `json:"author"`
	Files        []FileInfo `json:"files"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// PostDetail is the detail view of a post for one caller. IsLiked is false
// for anonymous callers.
type PostDetail struct {
	PostView
	IsLiked bool `json:"isLiked"`
}

// CommentView is the wire shape of a comment.
type CommentView struct {
	CommentID uint       `json:"commentId"`
	PostID    uint       `json:"postId"`
	Content   string     `json:"content"`
	Author    AuthorInfo `json:"author"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UserProfile is the wire shape of the signed-in user's profile.
type UserProfile struct {
	UserID          uint      `json:"userId"`
	Email           string    `json:"email"`
	Nickname        string    `json:"nickname"`
	ProfileImageURL string    `json:"profileImageUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Identity is the minimal echo returned by login and /auth/me.
type Identity struct {
	UserID          uint   `json:"userId"`
	Email           string `json:"email"`
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// ToAuthor renders the public identity of u.
func (u *User) ToAuthor() AuthorInfo {
	return AuthorInfo{UserID: u.ID, Nickname: u.Nickname, ProfileImageURL: u.ProfileImageURL}
}

// ToIdentity renders the minimal identity echo of u.
func (u *User) ToIdentity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Nickname: u.Nickname, ProfileImageURL: u.ProfileImageURL}
}

// ToProfile renders the full profile of u.
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		UserID:          u.ID,
		Email:           u.Email,
		Nickname:        u.Nickname,
		ProfileImageURL: u.ProfileImageURL,
		CreatedAt:       u.CreatedAt,
	}
}

// ToView renders p with its preloaded author and live attachments.
func (p *Post) ToView() PostView {
	files := make([]FileInfo, 0, len(p.Images))
	for _, img := range p.Images {
		files = append(files, FileInfo{FileID: img.ID, FileURL: img.FileURL, ImageID: img.ImageID})
	}
	return PostView{
		PostID:       p.ID,
		Title:        p.Title,
		Content:      p.Content,
		Hits:         p.ViewCount,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		Author:       p.User.ToAuthor(),
		Files:        files,
		CreatedAt:    p.CreatedAt,
	}
}

// ToView renders c with its preloaded author.
func (c *Comment) ToView() CommentView {
	return CommentView{
		CommentID: c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		Author:    c.User.ToAuthor(),
		CreatedAt: c.CreatedAt,
	}
}
