package dto

import (
	"strings"
	"time"

	"selfie/model"
)

type ActivityResponse struct {
	*model.Activity
	Late bool `json:"late"`
}

// ToActivityResponses marks lateness as seen at the caller's virtual now.
func ToActivityResponses(activities []*model.Activity, now time.Time) []ActivityResponse {
	out := make([]ActivityResponse, len(activities))
	for i, a := range activities {
		out[i] = ActivityResponse{Activity: a, Late: a.Late(now)}
	}
	return out
}

type OccurrenceResponse struct {
	EventID  string    `json:"event_id"`
	Index    int       `json:"index"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Author   string    `json:"author"`
	Location string    `json:"location,omitempty"`
	Pomodoro bool      `json:"is_pomodoro"`
}

func ToOccurrenceResponses(occ []model.Occurrence) []OccurrenceResponse {
	out := make([]OccurrenceResponse, len(occ))
	for i, o := range occ {
		out[i] = OccurrenceResponse{
			EventID: o.EventID,
			Index:   o.Index,
			Start:   o.Start,
			End:     o.End,
		}
		if e := o.Event; e != nil {
			out[i].Title = e.Title
			out[i].AllDay = e.AllDay
			out[i].Author = e.Author
			out[i].Location = e.Location
			out[i].Pomodoro = e.IsPomodoro
		}
	}
	return out
}

type MediaResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mimetype"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// MediaURL is the public address a media blob is served from.
func MediaURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/api/media/" + id
}

func ToMediaResponse(m *model.Media, baseURL string) MediaResponse {
	return MediaResponse{
		ID:        m.ID,
		Filename:  m.Filename,
		MimeType:  m.MimeType,
		Size:      m.Size,
		URL:       MediaURL(baseURL, m.ID),
		CreatedAt: m.CreatedAt,
	}
}

func ToMediaResponses(media []*model.Media, baseURL string) []MediaResponse {
	out := make([]MediaResponse, len(media))
	for i, m := range media {
		out[i] = ToMediaResponse(m, baseURL)
	}
	return out
}
