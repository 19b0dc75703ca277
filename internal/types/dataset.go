package types

import "time"

// DatasetInfo describes the snapshot currently being served.
type DatasetInfo struct {
	DatasetMetadata
	Source       string    `json:"source"`
	Airports     int       `json:"airports"`
	Destinations int       `json:"destinations"`
	Resolved     int       `json:"resolved_routes"`
	Degraded     int       `json:"degraded_routes"`
	LoadedAt     time.Time `json:"loaded_at"`
}
