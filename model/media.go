package model

import "time"

type Media struct {
	ID        string    `bson:"_id" json:"id"`
	Filename  string    `bson:"filename" json:"filename"`
	MimeType  string    `bson:"mimetype" json:"mimetype"`
	Size      int64     `bson:"size" json:"size"`
	Data      []byte    `bson:"data" json:"-"`
	Author    string    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
