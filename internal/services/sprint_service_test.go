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

type SprintServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.Store
	sprintRepo *fakeSprintRepo
	writer     *Writer
	tasks      *TaskService
	service    *SprintService
}

func (suite *SprintServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = store.New()
	suite.sprintRepo = newFakeSprintRepo()
	suite.writer = NewWriter(nil)
	suite.tasks = NewTaskService(suite.store, newFakeTaskRepo(), suite.writer, TaskServiceOptions{
		Clock: clock.NewFake(epoch),
	})
	suite.service = NewSprintService(suite.store, suite.sprintRepo, suite.tasks, suite.writer)
}

func (suite *SprintServiceTestSuite) TearDownTest() {
	suite.writer.Close()
}

func (suite *SprintServiceTestSuite) createSprint(name string) models.Sprint {
	m, err := suite.service.CreateSprint(CreateSprintInput{
		Name:      name,
		StartDate: epoch,
		EndDate:   epoch.Add(14 * 24 * time.Hour),
	})
	suite.Require().NoError(err)
	sp, err := m.Wait(suite.ctx)
	suite.Require().NoError(err)
	return sp
}

func (suite *SprintServiceTestSuite) TestCreateSprint() {
	sp := suite.createSprint("Sprint 1")
	suite.Equal(models.SprintStatusPlanning, sp.Status)

	_, err := suite.service.CreateSprint(CreateSprintInput{Name: " "})
	suite.ErrorIs(err, ErrSprintNameRequired)

	_, err = suite.service.CreateSprint(CreateSprintInput{Name: "Backwards", StartDate: epoch, EndDate: epoch.Add(-time.Hour)})
	suite.ErrorIs(err, ErrInvalidSprintRange)

	suite.Len(suite.service.ListSprints(), 1)
}

func (suite *SprintServiceTestSuite) TestSetSprintStatus_SingleActive() {
	a := suite.createSprint("A")
	b := suite.createSprint("B")

	_, err := suite.service.SetSprintStatus(a.ID, models.SprintStatusActive)
	suite.Require().NoError(err)

	m, err := suite.service.SetSprintStatus(b.ID, models.SprintStatusActive)
	suite.Require().NoError(err)
	suite.Require().NoError(m.Persist.Wait(suite.ctx))

	active, ok := suite.service.ActiveSprint()
	suite.Require().True(ok)
	suite.Equal(b.ID, active.ID)

	gotA, err := suite.service.GetSprint(a.ID)
	suite.Require().NoError(err)
	suite.Equal(models.SprintStatusCompleted, gotA.Status)

	storedA, _ := suite.sprintRepo.stored(a.ID)
	suite.Equal(models.SprintStatusCompleted, storedA.Status)
	storedB, _ := suite.sprintRepo.stored(b.ID)
	suite.Equal(models.SprintStatusActive, storedB.Status)

	activeCount := 0
	for _, sp := range suite.service.ListSprints() {
		if sp.Status == models.SprintStatusActive {
			activeCount++
		}
	}
	suite.Equal(1, activeCount)
}

func (suite *SprintServiceTestSuite) TestSetSprintStatus_LeavingActiveClearsReference() {
	a := suite.createSprint("A")
	_, err := suite.service.SetSprintStatus(a.ID, models.SprintStatusActive)
	suite.Require().NoError(err)

	_, err = suite.service.SetSprintStatus(a.ID, models.SprintStatusCompleted)
	suite.Require().NoError(err)

	_, ok := suite.service.ActiveSprint()
	suite.False(ok)

	_, err = suite.service.SetSprintStatus(a.ID, "cancelled")
	suite.ErrorIs(err, ErrInvalidStatus)
	_, err = suite.service.SetSprintStatus("missing", models.SprintStatusActive)
	suite.ErrorIs(err, ErrSprintNotFound)
}

func (suite *SprintServiceTestSuite) TestUpdateSprint() {
	sp := suite.createSprint("Old")

	name := "New"
	m, err := suite.service.UpdateSprint(sp.ID, UpdateSprintInput{Name: &name})
	suite.Require().NoError(err)
	suite.Require().NoError(m.Persist.Wait(suite.ctx))
	suite.Equal("New", m.Value.Name)
	stored, _ := suite.sprintRepo.stored(sp.ID)
	suite.Equal("New", stored.Name)

	end := epoch.Add(-time.Hour)
	_, err = suite.service.UpdateSprint(sp.ID, UpdateSprintInput{EndDate: &end})
	suite.ErrorIs(err, ErrInvalidSprintRange)

	current, _ := suite.service.GetSprint(sp.ID)
	suite.Equal(sp.EndDate, current.EndDate)
}

func (suite *SprintServiceTestSuite) TestAssignment() {
	sp := suite.createSprint("Sprint")
	due := epoch.Add(time.Hour)
	tm, err := suite.tasks.CreateTask(CreateTaskInput{Title: "Task", DueDate: &due})
	suite.Require().NoError(err)
	tm, err = suite.tasks.AddSubtask(tm.Value.ID, AddSubtaskInput{Title: "Sub"})
	suite.Require().NoError(err)
	taskID := tm.Value.ID
	subID := tm.Value.Subtasks[0].ID

	m, err := suite.service.AssignTaskToSprint(taskID, &sp.ID)
	suite.Require().NoError(err)
	suite.Equal(sp.ID, *m.Value.SprintID)
	suite.Nil(m.Value.Subtasks[0].SprintID)

	m, err = suite.service.AssignSubtaskToSprint(taskID, subID, &sp.ID)
	suite.Require().NoError(err)
	suite.Equal(sp.ID, *m.Value.Subtasks[0].SprintID)

	m, err = suite.service.AssignTaskToSprint(taskID, nil)
	suite.Require().NoError(err)
	suite.Nil(m.Value.SprintID)
	suite.NotNil(m.Value.Subtasks[0].SprintID)

	_, err = suite.service.AssignTaskToSprint(taskID, strPtr("missing"))
	suite.ErrorIs(err, ErrSprintNotFound)
}

func (suite *SprintServiceTestSuite) TestDeleteSprint_LeavesDanglingReference() {
	sp := suite.createSprint("Short lived")
	_, err := suite.service.SetSprintStatus(sp.ID, models.SprintStatusActive)
	suite.Require().NoError(err)

	due := epoch.Add(time.Hour)
	tm, err := suite.tasks.CreateTask(CreateTaskInput{Title: "Task", DueDate: &due, SprintID: &sp.ID})
	suite.Require().NoError(err)

	_, err = suite.service.DeleteSprint(sp.ID)
	suite.Require().NoError(err)

	task, err := suite.tasks.GetTask(tm.Value.ID)
	suite.Require().NoError(err)
	suite.Require().NotNil(task.SprintID)

	_, ok := suite.service.SprintOf(task.SprintID)
	suite.False(ok)
	_, ok = suite.service.ActiveSprint()
	suite.False(ok)
}

func TestSprintServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SprintServiceTestSuite))
}
