package dto

import (
	"time"

	"selfie/model"
)

type NoteLink struct {
	Href   string `json:"href"`
	Method string `json:"method,omitempty"` // Optional: GET, POST, PUT, PATCH, DELETE
}

type NoteResponse struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Content        string              `json:"content"`
	Categories     []string            `json:"categories"`
	AccessType     model.AccessType    `json:"access_type"`
	SpecificAccess []string            `json:"specific_access,omitempty"`
	Author         string              `json:"author"`
	Length         int                 `json:"length"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Links          map[string]NoteLink `json:"_links,omitempty"`
}

// ToNoteResponse renders note for username. The sharing list is only shown
// to the author.
func ToNoteResponse(note *model.Note, username string) NoteResponse {
	resp := NoteResponse{
		ID:         note.ID,
		Title:      note.Title,
		Content:    note.Content,
		Categories: note.Categories,
		AccessType: note.AccessType,
		Author:     note.Author,
		Length:     note.Length(),
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
		Links:      noteLinks(note, username),
	}
	if resp.Categories == nil {
		resp.Categories = []string{}
	}
	if note.Author == username {
		resp.SpecificAccess = note.SpecificAccess
	}
	return resp
}

func noteLinks(note *model.Note, username string) map[string]NoteLink {
	self := "/api/notes/" + note.ID
	links := map[string]NoteLink{
		"self":      {Href: self, Method: "GET"},
		"duplicate": {Href: self + "/duplicate", Method: "POST"},
	}
	if note.Author == username {
		links["update"] = NoteLink{Href: self, Method: "PATCH"}
		links["delete"] = NoteLink{Href: self, Method: "DELETE"}
	}
	return links
}

func ToNoteResponses(notes []*model.Note, username string) []NoteResponse {
	responses := make([]NoteResponse, len(notes))
	for i, note := range notes {
		responses[i] = ToNoteResponse(note, username)
	}
	return responses
}
