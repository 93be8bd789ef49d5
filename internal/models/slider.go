package models

// SliderModel is a hero slider entry on the landing page: an ordered set of
// images with an optional caption and link.
type SliderModel struct {
	Base      `bson:",inline"`
	Title     string   `bson:"title"      json:"title"`
	Caption   string   `bson:"caption,omitempty"  json:"caption,omitempty"`
	LinkURL   string   `bson:"link_url,omitempty" json:"link_url,omitempty"`
	ImageURLs []string `bson:"image_urls" json:"image_urls"`
	Order     int      `bson:"order"      json:"order"`
}

func (SliderModel) CollectionName() string { return "sliders" }
