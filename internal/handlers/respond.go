package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/sprint-tracker/internal/errors"
	"github.com/yukikurage/sprint-tracker/internal/services"
)

// respond waits for the queued write and answers with the rendered value.
// When the write fails the local change stays and the client gets 502 with
// the same body in details. A client that went away gets no response; the
// write still completes in the background.
func respond[T any](c *gin.Context, status int, m services.Mutation[T], render func(T) any) {
	ctx := c.Request.Context()
	value, err := m.Wait(ctx)
	if err != nil && ctx.Err() != nil {
		c.Abort()
		return
	}
	body := render(value)
	if err != nil {
		apierrors.FromError(c, err, body)
		return
	}
	c.JSON(status, body)
}

// fields holds a JSON object whose keys are decoded one at a time, so a
// handler can tell a missing key from an explicit null.
type fields map[string]json.RawMessage

func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

func (f fields) isNull(key string) bool {
	raw, ok := f[key]
	return ok && string(raw) == "null"
}

// decode unmarshals key into dest. It reports false when the key is absent.
func (f fields) decode(key string, dest any) (bool, error) {
	raw, ok := f[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, fmt.Errorf("invalid %s", key)
	}
	return true, nil
}

// nullableTime decodes a timestamp that may be null. A null yields the
// zero time.
func (f fields) nullableTime(key string) (*time.Time, error) {
	if !f.has(key) {
		return nil, nil
	}
	if f.isNull(key) {
		return &time.Time{}, nil
	}
	var t time.Time
	if _, err := f.decode(key, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
