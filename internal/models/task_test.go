package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskClone_SharesNothing(t *testing.T) {
	due := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sprint := "s1"
	task := Task{
		ID:       "t1",
		SprintID: &sprint,
		Subtasks: Subtasks{{ID: "a", DueDate: &due, Comments: Comments{{ID: "c", Likes: []uint64{1}}}}},
		Comments: Comments{{ID: "c2", Likes: []uint64{2}}},
	}

	clone := task.Clone()
	*clone.SprintID = "other"
	*clone.Subtasks[0].DueDate = due.Add(time.Hour)
	clone.Subtasks[0].Comments[0].Likes[0] = 99
	clone.Comments[0].Likes = append(clone.Comments[0].Likes, 3)

	assert.Equal(t, "s1", *task.SprintID)
	assert.Equal(t, due, *task.Subtasks[0].DueDate)
	assert.Equal(t, uint64(1), task.Subtasks[0].Comments[0].Likes[0])
	assert.Len(t, task.Comments[0].Likes, 1)
}

func TestSubtasks_ScanDocument(t *testing.T) {
	var subtasks Subtasks
	require.NoError(t, subtasks.Scan([]byte(`[{"id":"a","title":"write","completed":true}]`)))
	require.Len(t, subtasks, 1)
	assert.True(t, subtasks[0].Completed)

	var empty Subtasks
	require.NoError(t, empty.Scan("null"))
	assert.Nil(t, empty)

	assert.Error(t, empty.Scan(42))
}

func TestTaskStatus(t *testing.T) {
	assert.True(t, TaskStatusPaused.Valid())
	assert.False(t, TaskStatus("done").Valid())
	assert.True(t, TaskStatusClosed.Resolved())
	assert.False(t, TaskStatusPaused.Resolved())
}
