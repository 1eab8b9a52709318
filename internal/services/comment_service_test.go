package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/sprint-tracker/internal/clock"
	"github.com/yukikurage/sprint-tracker/internal/models"
	"github.com/yukikurage/sprint-tracker/internal/store"
)

type CommentServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	writer  *Writer
	tasks   *TaskService
	service *CommentService
	task    models.Task
}

func (suite *CommentServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.writer = NewWriter(nil)
	suite.tasks = NewTaskService(store.New(), newFakeTaskRepo(), suite.writer, TaskServiceOptions{
		Clock: clock.NewFake(epoch),
	})
	suite.service = NewCommentService(suite.tasks, staticProfiles{1: "alice", 2: "bob", 3: "root"})

	due := epoch.Add(time.Hour)
	m, err := suite.tasks.CreateTask(CreateTaskInput{Title: "Discuss", DueDate: &due, CreatedBy: 1})
	suite.Require().NoError(err)
	m, err = suite.tasks.AddSubtask(m.Value.ID, AddSubtaskInput{Title: "Sub"})
	suite.Require().NoError(err)
	suite.task = m.Value
}

func (suite *CommentServiceTestSuite) TearDownTest() {
	suite.writer.Close()
}

func (suite *CommentServiceTestSuite) TestAddComment() {
	m, err := suite.service.AddComment(CommentScope{TaskID: suite.task.ID}, " hello ", 1)
	suite.Require().NoError(err)
	suite.Require().NoError(m.Persist.Wait(suite.ctx))

	suite.Require().Len(m.Value.Comments, 1)
	c := m.Value.Comments[0]
	suite.Equal("hello", c.Text)
	suite.Equal(uint64(1), c.CreatedBy)
	suite.Equal("alice", c.CreatedByName)
	suite.Equal(epoch, c.CreatedAt)
	suite.Empty(c.Likes)

	_, err = suite.service.AddComment(CommentScope{TaskID: suite.task.ID}, "   ", 1)
	suite.ErrorIs(err, ErrCommentTextRequired)
}

func (suite *CommentServiceTestSuite) TestSubtaskCommentsAreSeparate() {
	scope := CommentScope{TaskID: suite.task.ID, SubtaskID: suite.task.Subtasks[0].ID}
	m, err := suite.service.AddComment(scope, "on the subtask", 2)
	suite.Require().NoError(err)

	suite.Empty(m.Value.Comments)
	suite.Len(m.Value.Subtasks[0].Comments, 1)

	_, err = suite.service.AddComment(CommentScope{TaskID: suite.task.ID, SubtaskID: "missing"}, "x", 2)
	suite.ErrorIs(err, ErrSubtaskNotFound)
}

func (suite *CommentServiceTestSuite) TestToggleCommentLike() {
	scope := CommentScope{TaskID: suite.task.ID}
	m, err := suite.service.AddComment(scope, "like me", 1)
	suite.Require().NoError(err)
	commentID := m.Value.Comments[0].ID

	m, err = suite.service.ToggleCommentLike(scope, commentID, 2)
	suite.Require().NoError(err)
	suite.Equal([]uint64{2}, m.Value.Comments[0].Likes)
	suite.True(m.Value.Comments[0].LikedBy(2))

	m, err = suite.service.ToggleCommentLike(scope, commentID, 3)
	suite.Require().NoError(err)
	suite.Equal([]uint64{2, 3}, m.Value.Comments[0].Likes)

	m, err = suite.service.ToggleCommentLike(scope, commentID, 2)
	suite.Require().NoError(err)
	suite.Equal([]uint64{3}, m.Value.Comments[0].Likes)

	_, err = suite.service.ToggleCommentLike(scope, "missing", 2)
	suite.ErrorIs(err, ErrCommentNotFound)
}

func (suite *CommentServiceTestSuite) TestDeleteComment_Authorization() {
	scope := CommentScope{TaskID: suite.task.ID}
	m, err := suite.service.AddComment(scope, "mine", 1)
	suite.Require().NoError(err)
	commentID := m.Value.Comments[0].ID

	_, err = suite.service.DeleteComment(scope, commentID, Requester{UserID: 2})
	suite.ErrorIs(err, ErrPermissionDenied)

	current, err := suite.tasks.GetTask(suite.task.ID)
	suite.Require().NoError(err)
	suite.Len(current.Comments, 1)

	m, err = suite.service.DeleteComment(scope, commentID, Requester{UserID: 3, IsAdmin: true})
	suite.Require().NoError(err)
	suite.Empty(m.Value.Comments)

	m, err = suite.service.AddComment(scope, "again", 1)
	suite.Require().NoError(err)
	m, err = suite.service.DeleteComment(scope, m.Value.Comments[0].ID, Requester{UserID: 1})
	suite.Require().NoError(err)
	suite.Empty(m.Value.Comments)

	_, err = suite.service.DeleteComment(scope, "missing", Requester{UserID: 1})
	suite.ErrorIs(err, ErrCommentNotFound)
}

func TestCommentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CommentServiceTestSuite))
}
