package model

import "time"

type Workout struct {
	ID        string    `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Reps      int       `bson:"reps" json:"reps"`
	Load      float64   `bson:"load" json:"load"`
	Author    string    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type WorkoutInput struct {
	Title *string  `json:"title" binding:"omitempty,max=200"`
	Reps  *int     `json:"reps"`
	Load  *float64 `json:"load"`
}
