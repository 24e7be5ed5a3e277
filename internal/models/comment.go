package models

// Comment is a reader comment. PostID is not a foreign key.
type Comment struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Body   string `gorm:"type:text;not null" json:"body"`
	Author string `gorm:"size:250;not null" json:"author"`
	Date   string `gorm:"size:250;not null" json:"date"`
	PostID uint   `gorm:"column:post_id;index" json:"post_id"`
}

func (Comment) TableName() string {
	return "user_comment"
}
