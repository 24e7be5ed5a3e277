package server

import (
	"errors"
	"fmt"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Home lists every post.
func (s *Server) Home(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "index", "Home", fiber.Map{"Posts": posts})
}

// ShowPost renders a post with its comment list.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return err
	}

	var viewerID uint
	if id := middleware.CurrentIdentity(c); id != nil {
		viewerID = id.UserID
	}
	comments, err := s.commentService.ListForPost(c.UserContext(), postID, viewerID)
	if err != nil {
		return err
	}

	return s.render(c, fiber.StatusOK, "post", post.Title, fiber.Map{
		"Post":     post,
		"Comments": comments,
	})
}

// AddComment stores a comment and returns to the post. A failed write is
// reported as a flash message on the post page.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var form CommentForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	_, err = s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		Identity: middleware.CurrentIdentity(c),
		PostID:   postID,
		Body:     form.Comment,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.ErrCodeNotFound {
			return err
		}
		msg := appErrorMessage(err)
		if msg == "" {
			middleware.Logger.ErrorContext(c.UserContext(), "failed to store comment", "post_id", postID, "error", err)
			msg = models.MsgCommentFailed
		}
		setFlash(c, flashWarning, msg)
	}
	return c.Redirect(fmt.Sprintf("/post/%d", postID))
}

// NewPostPage renders an empty post form.
func (s *Server) NewPostPage(c *fiber.Ctx) error {
	return s.renderPostForm(c, fiber.StatusOK, PostForm{}, 0, "")
}

// CreatePost stores a new post authored by the session user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	_, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Identity:  middleware.CurrentIdentity(c),
		PostInput: form.input(),
	})
	if err != nil {
		if msg := validationMessage(err); msg != "" {
			return s.renderPostForm(c, fiber.StatusOK, form, 0, msg)
		}
		return err
	}
	return c.Redirect("/")
}

// EditPostPage renders the post form filled with the stored post.
func (s *Server) EditPostPage(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return err
	}
	if err := s.postService.AuthorizeMutation(middleware.CurrentIdentity(c), post); err != nil {
		return err
	}

	form := PostForm{Title: post.Title, Subtitle: post.Subtitle, ImgURL: post.ImgURL, Body: post.Body}
	return s.renderPostForm(c, fiber.StatusOK, form, post.ID, "")
}

// UpdatePost overwrites a post and returns to it.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var form PostForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	_, err = s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		Identity:  middleware.CurrentIdentity(c),
		PostID:    postID,
		PostInput: form.input(),
	})
	if err != nil {
		if msg := validationMessage(err); msg != "" {
			return s.renderPostForm(c, fiber.StatusOK, form, postID, msg)
		}
		return err
	}
	return c.Redirect(fmt.Sprintf("/post/%d", postID))
}

// DeletePost hard-deletes a post and returns home.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		Identity: middleware.CurrentIdentity(c),
		PostID:   postID,
	}); err != nil {
		return err
	}
	setFlash(c, flashInfo, "Post deleted.")
	return c.Redirect("/")
}

// Account shows the session user and every post.
func (s *Server) Account(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "account", "Account", fiber.Map{"Posts": posts})
}

func (s *Server) renderPostForm(c *fiber.Ctx, status int, form PostForm, postID uint, warning string) error {
	data := fiber.Map{
		"Form":   form,
		"IsEdit": postID != 0,
		"Action": "/new-post",
	}
	title := "New Post"
	if postID != 0 {
		data["Action"] = fmt.Sprintf("/edit-post/%d", postID)
		title = "Edit Post"
	}
	if warning != "" {
		data["Warning"] = warning
	}
	return s.render(c, status, "make-post", title, data)
}

func (f PostForm) input() service.PostInput {
	return service.PostInput{
		Title:    f.Title,
		Subtitle: f.Subtitle,
		ImgURL:   f.ImgURL,
		Body:     f.Body,
	}
}
