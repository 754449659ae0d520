package model

import (
	"time"
	"unicode/utf8"
)

type AccessType string

const (
	AccessPublic   AccessType = "public"
	AccessPrivate  AccessType = "private"
	AccessSpecific AccessType = "specific"
)

func (a AccessType) Valid() bool {
	return a == AccessPublic || a == AccessPrivate || a == AccessSpecific
}

type Note struct {
	ID             string     `bson:"_id" json:"id"`
	Title          string     `bson:"title" json:"title"`
	Content        string     `bson:"content" json:"content"`
	Categories     []string   `bson:"categories" json:"categories"`
	AccessType     AccessType `bson:"access_type" json:"access_type"`
	SpecificAccess []string   `bson:"specific_access,omitempty" json:"specific_access,omitempty"`
	Author         string     `bson:"author" json:"author"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// VisibleTo applies the note's access type to username.
func (n *Note) VisibleTo(username string) bool {
	if n.Author == username {
		return true
	}
	switch n.AccessType {
	case AccessPublic:
		return true
	case AccessSpecific:
		return contains(n.SpecificAccess, username)
	}
	return false
}

// Length is the content length in characters.
func (n *Note) Length() int {
	return utf8.RuneCountInString(n.Content)
}

type NoteInput struct {
	Title          *string     `json:"title" binding:"omitempty,max=200"`
	Content        *string     `json:"content" binding:"omitempty,max=50000"`
	Categories     *[]string   `json:"categories"`
	AccessType     *AccessType `json:"access_type"`
	SpecificAccess *[]string   `json:"specific_access"`
}

type NoteListOptions struct {
	Username  string
	Category  string
	SortBy    string // title, created, updated, length
	SortOrder string // asc, desc
}
