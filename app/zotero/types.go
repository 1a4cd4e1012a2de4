package zotero

// Item is a library entry as returned by the Zotero Web API v3.
type Item struct {
	Key     string   `json:"key"`
	Version int      `json:"version"`
	Data    ItemData `json:"data"`
}

// ItemData carries the writable fields of an item. Updates are
// partial: the API leaves omitted fields unchanged, so an update
// payload holds only the key, the version, and the fields being
// changed. forumPost items take forumTitle and blogPost items take
// blogTitle; sending the wrong one fails API validation.
type ItemData struct {
	Key         string    `json:"key,omitempty"`
	Version     int       `json:"version,omitempty"`
	ItemType    string    `json:"itemType,omitempty"`
	Title       string    `json:"title,omitempty"`
	URL         string    `json:"url,omitempty"`
	Date        string    `json:"date,omitempty"`
	BlogTitle   string    `json:"blogTitle,omitempty"`
	ForumTitle  string    `json:"forumTitle,omitempty"`
	WebsiteType string    `json:"websiteType,omitempty"`
	Creators    []Creator `json:"creators,omitempty"`
	Tags        []Tag     `json:"tags,omitempty"`
}

type Creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

type Tag struct {
	Tag string `json:"tag"`
}

// HasTag reports whether the item carries the given tag.
func (d ItemData) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t.Tag == tag {
			return true
		}
	}
	return false
}

// IsEmpty reports whether an update payload carries no field changes
// beyond its addressing (key and version).
func (d ItemData) IsEmpty() bool {
	return d.ItemType == "" && d.Title == "" && d.URL == "" && d.Date == "" &&
		d.BlogTitle == "" && d.ForumTitle == "" && d.WebsiteType == "" &&
		len(d.Creators) == 0 && len(d.Tags) == 0
}
