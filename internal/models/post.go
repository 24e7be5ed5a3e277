// Package models contains the persisted domain types of the blog.
package models

import "time"

// PostDateLayout is the display format stored in Post.Date and Comment.Date.
const PostDateLayout = "January 02, 2006"

// Post is a blog article.
type Post struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:250;uniqueIndex;not null" json:"title"`
	Subtitle    string `gorm:"size:250;not null" json:"subtitle"`
	Date        string `gorm:"size:250;not null" json:"date"`
	Body        string `gorm:"type:text;not null" json:"body"`
	Author      string `gorm:"size:250;not null" json:"author"`
	ImgURL      string `gorm:"column:img_url;size:250;not null" json:"img_url"`
	AuthorEmail string `gorm:"column:users_email;size:250" json:"author_email"`
}

func (Post) TableName() string {
	return "blog_post"
}

// FormatDate renders t the way posts and comments store their date.
func FormatDate(t time.Time) string {
	return t.Format(PostDateLayout)
}
