package substack

// ContentType is the classification of a URL within the Substack
// content taxonomy. Assigned once per URL by the Classifier.
type ContentType string

const (
	ContentTypePost ContentType = "post"
	ContentTypeNote ContentType = "note"
	ContentTypeChat ContentType = "chat"
	ContentTypeNone ContentType = ""
)

// ItemType is the target Zotero item type for a reclassified entry.
type ItemType string

const (
	ItemTypeBlogPost  ItemType = "blogPost"
	ItemTypeForumPost ItemType = "forumPost"
)

// Metadata is the normalized record produced by the Extractor for a
// single URL/HTML pair. Constructed fresh per page, immutable once
// returned.
type Metadata struct {
	Title       string
	Author      string
	Date        string // YYYY-MM-DD when parseable, raw source string otherwise
	Publisher   string
	SchemaType  string // @type of the JSON-LD record the fields came from
	ContentType ContentType
	ItemType    ItemType
}

// forumSchemaTypes are JSON-LD types that map to a forumPost entry
// even when the URL itself classified as a regular post.
var forumSchemaTypes = map[string]bool{
	"Comment":                true,
	"SocialMediaPosting":     true,
	"DiscussionForumPosting": true,
}

// ItemTypeFor resolves the target Zotero item type from the URL
// classification and the schema type of the extracted record.
func ItemTypeFor(contentType ContentType, schemaType string) ItemType {
	if contentType == ContentTypeNote || contentType == ContentTypeChat {
		return ItemTypeForumPost
	}
	if forumSchemaTypes[schemaType] {
		return ItemTypeForumPost
	}
	return ItemTypeBlogPost
}
