package model

import "time"

type Activity struct {
	ID          string     `bson:"_id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	EndDate     time.Time  `bson:"end_date" json:"end_date"`
	Completed   bool       `bson:"completed" json:"completed"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Author      string     `bson:"author" json:"author"`
	GroupList   []string   `bson:"group_list" json:"group_list"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// Late reports whether the activity is still open past its end date.
func (a *Activity) Late(now time.Time) bool {
	return !a.Completed && a.EndDate.Before(now)
}

func (a *Activity) VisibleTo(username string) bool {
	return a.Author == username || contains(a.GroupList, username)
}

type ActivityStatus string

const (
	ActivityAll       ActivityStatus = "all"
	ActivityPending   ActivityStatus = "pending"
	ActivityCompleted ActivityStatus = "completed"
	ActivityLate      ActivityStatus = "late"
)

type ActivityInput struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	EndDate     *time.Time `json:"end_date"`
	Completed   *bool      `json:"completed"`
	GroupList   *[]string  `json:"group_list"`
}
