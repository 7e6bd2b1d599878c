package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Video is a stored media reference for lecture content
type Video struct {
	PublicID string `bson:"public_id" json:"public_id"`
	URL      string `bson:"url" json:"url"`
}

// Lecture is one video entry inside a course
type Lecture struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Video       Video         `bson:"video" json:"video"`
}

// Course represents a course entity. NumOfVideos is derived from the lecture
// list and must be recomputed on every lecture add/remove.
type Course struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Category    string        `bson:"category" json:"category"`
	CreatedBy   string        `bson:"created_by" json:"created_by"`
	Poster      Avatar        `bson:"poster" json:"poster"`
	Lectures    []Lecture     `bson:"lectures" json:"lectures,omitempty"`
	Views       int64         `bson:"views" json:"views"`
	NumOfVideos int           `bson:"num_of_videos" json:"num_of_videos"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}

// RecountVideos re-derives NumOfVideos from the lecture list
func (c *Course) RecountVideos() {
	c.NumOfVideos = len(c.Lectures)
}
