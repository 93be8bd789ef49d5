package models

import "time"

// Project status values.
const (
	ProjectOngoing  = "ongoing"
	ProjectFinished = "finished"
)

// ProjectModel is a construction project. ServiceSlug is a denormalized
// secondary key kept alongside ServiceID so records survive a stale or
// renamed service reference. MediaURLs is never empty for a persisted
// project; the first entry is the cover.
type ProjectModel struct {
	Base        `bson:",inline"`
	Title       string     `bson:"title"        json:"title"`
	Description string     `bson:"description"  json:"description"`
	Status      string     `bson:"status"       json:"status"`
	ServiceID   string     `bson:"service_id"   json:"service_id"`
	ServiceSlug string     `bson:"service_slug" json:"service_slug"`
	MediaURLs   []string   `bson:"media_urls"   json:"media_urls"`
	Client      string     `bson:"client,omitempty"     json:"client,omitempty"`
	Location    string     `bson:"location,omitempty"   json:"location,omitempty"`
	StartDate   *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate     *time.Time `bson:"end_date,omitempty"   json:"end_date,omitempty"`
}

func (ProjectModel) CollectionName() string { return "projects" }

// Cover is the representative thumbnail: always the first media URL.
func (p ProjectModel) Cover() string {
	if len(p.MediaURLs) == 0 {
		return ""
	}
	return p.MediaURLs[0]
}

// ValidStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	return s == ProjectOngoing || s == ProjectFinished
}
