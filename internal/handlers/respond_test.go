package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

func TestRespond_ClientGoneWritesNothing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	writer := services.NewWriter(nil)
	release := make(chan struct{})
	pending := writer.Submit("slow save", func(context.Context) error {
		<-release
		return nil
	})
	defer writer.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/tasks", nil).WithContext(ctx)

	respond(c, http.StatusCreated, services.Mutation[string]{Value: "t1", Persist: pending}, func(v string) any {
		return gin.H{"id": v}
	})

	assert.True(t, c.IsAborted())
	assert.False(t, c.Writer.Written())
	assert.Zero(t, w.Body.Len())
}

func TestRespond_PersistenceFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	writer := services.NewWriter(nil)
	defer writer.Close()
	pending := writer.Submit("failing save", func(context.Context) error {
		return errors.New("disk full")
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

	respond(c, http.StatusCreated, services.Mutation[string]{Value: "t1", Persist: pending}, func(v string) any {
		return gin.H{"id": v}
	})

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"t1"`)
}
