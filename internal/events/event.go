package events

import "time"

const (
	TypeCatalogReloaded = "catalog.reloaded"
	TypeImagesChanged   = "images.changed"
)

type Event struct {
	Type  string    `json:"type"`
	Count int       `json:"count,omitempty"`
	At    time.Time `json:"at"`
}

func New(typ string, count int) Event {
	return Event{Type: typ, Count: count, At: time.Now().UTC()}
}
