package models

// ServiceModel is one offered construction service (e.g. steel structures,
// interior works). Slug is derived from the name on creation and only
// recomputed on explicit edit.
type ServiceModel struct {
	Base        `bson:",inline"`
	Name        string `bson:"name"        json:"name"`
	Description string `bson:"description" json:"description"`
	Slug        string `bson:"slug"        json:"slug"`
	CoverURL    string `bson:"cover_url"   json:"cover_url"`
}

func (ServiceModel) CollectionName() string { return "services" }
