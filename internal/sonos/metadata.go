package sonos

import (
	"encoding/xml"
	"html"
	"net/url"
	"regexp"
	"strings"
)

// didlLite is the DIDL-Lite document UPnP uses for track metadata.
type didlLite struct {
	Items []didlItem `xml:"urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/ item"`
}

type didlItem struct {
	Title   string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Album   string `xml:"urn:schemas-upnp-org:metadata-1-0/upnp/ album"`
}

type trackMetadata struct {
	Title  string
	Artist string
	Album  string
}

var elementPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, name := range []string{"title", "creator", "album"} {
		elementPatterns[name] = regexp.MustCompile(`<(?:\w+:)?` + name + `[^>]*>([^<]*)</(?:\w+:)?` + name + `>`)
	}
}

// parseTrackMetadata reads title, artist and album from DIDL-Lite. It returns
// false when no title can be found.
func parseTrackMetadata(metadata string) (trackMetadata, bool) {
	if metadata == "" || metadata == "NOT_IMPLEMENTED" {
		return trackMetadata{}, false
	}
	// Metadata nested in another document arrives escaped once more.
	if strings.HasPrefix(metadata, "&lt;") {
		metadata = html.UnescapeString(metadata)
	}

	var didl didlLite
	if err := xml.Unmarshal([]byte(metadata), &didl); err == nil && len(didl.Items) > 0 && didl.Items[0].Title != "" {
		item := didl.Items[0]
		return trackMetadata{Title: item.Title, Artist: item.Creator, Album: item.Album}, true
	}

	// Some firmware emits undeclared prefixes that encoding/xml rejects.
	md := trackMetadata{
		Title:  extractElement(metadata, "title"),
		Artist: extractElement(metadata, "creator"),
		Album:  extractElement(metadata, "album"),
	}
	return md, md.Title != ""
}

func extractElement(doc, localName string) string {
	if m := elementPatterns[localName].FindStringSubmatch(doc); len(m) > 1 {
		return html.UnescapeString(strings.TrimSpace(m[1]))
	}
	return ""
}

// trackID returns a stable id for a Sonos track URI. Spotify tracks played
// through Sonos map to their spotify:track URI so they match the Web API.
func trackID(uri string) string {
	rest := strings.TrimPrefix(uri, "x-sonos-spotify:")
	if rest != uri {
		rest, _, _ = strings.Cut(rest, "?")
		if unescaped, err := url.PathUnescape(rest); err == nil {
			rest = unescaped
		}
		if strings.HasPrefix(rest, "spotify:track:") {
			return rest
		}
	}
	return uri
}
