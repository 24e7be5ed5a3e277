package server

// RegisterForm is the /register submission.
type RegisterForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// LoginForm is the /login submission.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// PostForm is the create and edit post submission.
type PostForm struct {
	Title    string `form:"title"`
	Subtitle string `form:"subtitle"`
	ImgURL   string `form:"img_url"`
	Body     string `form:"body"`
}

// CommentForm is the comment box on a post page.
type CommentForm struct {
	Comment string `form:"comment"`
}

// ContactForm is the /contact submission.
type ContactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Message string `form:"message"`
}
