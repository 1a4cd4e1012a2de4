package discover

import (
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"
)

const substackFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
<channel>
	<title>Platformer</title>
	<link>https://www.platformer.news</link>
	<generator>Substack</generator>
	<item>
		<title>Some post</title>
		<link>https://www.platformer.news/p/some-post</link>
	</item>
</channel>
</rss>`

const genericFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>A Normal Blog</title>
	<link>https://example.com</link>
	<generator>WordPress</generator>
	<item>
		<title>Post</title>
		<link>https://example.com/post</link>
		<description>nothing special here</description>
	</item>
</channel>
</rss>`

const cdnMarkerFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
	<title>Custom Domain Pub</title>
	<link>https://custom.example</link>
	<item>
		<title>Post</title>
		<link>https://custom.example/p/post</link>
		<description>&lt;img src="https://substackcdn.com/image/fetch/abc.jpg"&gt;</description>
	</item>
</channel>
</rss>`

func parseFeed(t *testing.T, xml string) *gofeed.Feed {
	t.Helper()
	feed, err := gofeed.NewParser().Parse(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("Failed to parse test feed: %v", err)
	}
	return feed
}

func TestIsSubstackFeed(t *testing.T) {
	if !isSubstackFeed(parseFeed(t, substackFeedXML)) {
		t.Error("Feed with Substack generator should be confirmed")
	}
	if isSubstackFeed(parseFeed(t, genericFeedXML)) {
		t.Error("WordPress feed must not be confirmed")
	}
	if !isSubstackFeed(parseFeed(t, cdnMarkerFeedXML)) {
		t.Error("Feed with substackcdn assets should be confirmed")
	}
}
