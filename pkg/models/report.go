package models

// MissingImage describes a product whose image field has no matching file.
type MissingImage struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ReportEntry is one line of a repair report, in catalog order.
type ReportEntry struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Before string `json:"before"`
	After  string `json:"after"`
	Note   string `json:"note,omitempty"` // "fallback" when the placeholder was chosen
}
