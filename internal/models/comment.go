package models

import (
	"database/sql/driver"
	"time"
)

type Comment struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"created_at"`
	CreatedBy       uint64    `json:"created_by"`
	CreatedByName   string    `json:"created_by_name"`
	CreatedByAvatar string    `json:"created_by_avatar,omitempty"`
	Likes           []uint64  `json:"likes"`
}

// LikedBy reports whether userID is in the like set.
func (c Comment) LikedBy(userID uint64) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

type Comments []Comment

func (c Comments) Clone() Comments {
	if c == nil {
		return nil
	}
	out := make(Comments, len(c))
	for i, comment := range c {
		out[i] = comment
		if comment.Likes != nil {
			out[i].Likes = append([]uint64(nil), comment.Likes...)
		}
	}
	return out
}

func (c Comments) Value() (driver.Value, error) {
	return marshalDocument(c)
}

func (c *Comments) Scan(value any) error {
	return unmarshalDocument(value, c)
}
