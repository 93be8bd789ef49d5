package models

// Post status values.
const (
	PostDraft     = "draft"
	PostPublished = "published"
)

// PostModel is a news/blog entry. Category is free text, not a foreign key;
// related posts are computed at read time by category equality and never
// stored.
type PostModel struct {
	Base        `bson:",inline"`
	Title       string   `bson:"title"       json:"title"`
	Excerpt     string   `bson:"excerpt"     json:"excerpt"`
	Content     string   `bson:"content"     json:"content"`
	Status      string   `bson:"status"      json:"status"`
	Category    string   `bson:"category,omitempty" json:"category,omitempty"`
	Tags        []string `bson:"tags,omitempty"     json:"tags,omitempty"`
	CoverURL    string   `bson:"cover_url"   json:"cover_url"`
	GalleryURLs []string `bson:"gallery_urls,omitempty" json:"gallery_urls,omitempty"`
	Slug        string   `bson:"slug"        json:"slug"`
}

func (PostModel) CollectionName() string { return "posts" }

// ValidPostStatus reports whether s is a known post status.
func ValidPostStatus(s string) bool {
	return s == PostDraft || s == PostPublished
}
