package models

import "time"

const MaxPostContentLength = 3000

type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AuthorID  uint      `json:"authorId" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:varchar(3000);not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	Author   User      `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Hashtags []Hashtag `json:"hashtags" gorm:"many2many:post_hashtags;constraint:OnDelete:CASCADE"`
}

// Hashtag rows are created on first use and never removed.
type Hashtag struct {
	ID  uint   `json:"id" gorm:"primaryKey"`
	Tag string `json:"tag" gorm:"type:varchar(255);uniqueIndex;not null"`
}

type Like struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	UserID  uint      `json:"userId" gorm:"not null;uniqueIndex:idx_likes_user_post"`
	PostID  uint      `json:"postId" gorm:"not null;uniqueIndex:idx_likes_user_post;index"`
	LikedAt time.Time `json:"likedAt" gorm:"autoCreateTime"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Post Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}

func (Hashtag) TableName() string {
	return "hashtags"
}

func (Like) TableName() string {
	return "likes"
}
