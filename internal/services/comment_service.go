package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

// CommentScope addresses the comment list of a task, or of one of its
// subtasks when SubtaskID is set.
type CommentScope struct {
	TaskID    string
	SubtaskID string
}

// Requester is the caller identity used for comment authorization.
type Requester struct {
	UserID  uint64
	IsAdmin bool
}

// Profiles resolves display information for comment authors
type Profiles interface {
	Profile(userID uint64) (name, avatarURL string)
}

// CommentService handles threaded comments and likes
type CommentService struct {
	tasks    *TaskService
	profiles Profiles
}

// NewCommentService creates a new CommentService
func NewCommentService(tasks *TaskService, profiles Profiles) *CommentService {
	return &CommentService{
		tasks:    tasks,
		profiles: profiles,
	}
}

// AddComment appends a comment to the scope
func (s *CommentService) AddComment(scope CommentScope, text string, author uint64) (Mutation[models.Task], error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Mutation[models.Task]{}, ErrCommentTextRequired
	}

	name, avatar := s.profiles.Profile(author)
	now := s.tasks.tw.now()
	return s.withComments(scope, func(comments *models.Comments) error {
		*comments = append(*comments, models.Comment{
			ID:              uuid.NewString(),
			Text:            text,
			CreatedAt:       now,
			CreatedBy:       author,
			CreatedByName:   name,
			CreatedByAvatar: avatar,
			Likes:           []uint64{},
		})
		return nil
	})
}

// ToggleCommentLike likes the comment for userID, or unlikes it if the
// user already did
func (s *CommentService) ToggleCommentLike(scope CommentScope, commentID string, userID uint64) (Mutation[models.Task], error) {
	return s.withComments(scope, func(comments *models.Comments) error {
		c, err := findComment(*comments, commentID)
		if err != nil {
			return err
		}
		for i, id := range c.Likes {
			if id == userID {
				c.Likes = append(c.Likes[:i], c.Likes[i+1:]...)
				return nil
			}
		}
		c.Likes = append(c.Likes, userID)
		return nil
	})
}

// DeleteComment removes a comment if the requester wrote it or is an admin
func (s *CommentService) DeleteComment(scope CommentScope, commentID string, requester Requester) (Mutation[models.Task], error) {
	return s.withComments(scope, func(comments *models.Comments) error {
		for i, c := range *comments {
			if c.ID != commentID {
				continue
			}
			if c.CreatedBy != requester.UserID && !requester.IsAdmin {
				return ErrNotCommentOwner
			}
			*comments = append((*comments)[:i], (*comments)[i+1:]...)
			return nil
		}
		return ErrCommentNotFound
	})
}

func (s *CommentService) withComments(scope CommentScope, fn func(comments *models.Comments) error) (Mutation[models.Task], error) {
	if scope.SubtaskID == "" {
		return s.tasks.tw.apply(scope.TaskID, []string{"comments"}, func(t *models.Task) error {
			return fn(&t.Comments)
		})
	}
	return s.tasks.tw.apply(scope.TaskID, []string{"subtasks"}, func(t *models.Task) error {
		st, err := subtaskAt(t, scope.SubtaskID)
		if err != nil {
			return err
		}
		return fn(&st.Comments)
	})
}

func findComment(comments models.Comments, id string) (*models.Comment, error) {
	for i := range comments {
		if comments[i].ID == id {
			return &comments[i], nil
		}
	}
	return nil, ErrCommentNotFound
}
