// Package invite builds and parses personalized event invite links. A link
// is the event page URL with the invitee's name carried in a query
// parameter, so the page can prefill the guest name on arrival.
package invite

import (
	"fmt"
	"net/url"
	"strings"
)

// ParamName is the query parameter carrying the invitee's name.
const ParamName = "invite"

// Encode returns the invite link for one invitee. The name survives a
// round trip through Decode unchanged apart from surrounding whitespace.
func Encode(baseURL, eventID, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("invite: name is empty")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invite: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invite: base url must be absolute")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/events/" + url.PathEscape(eventID)

	query := parsed.Query()
	query.Set(ParamName, trimmed)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// Decode extracts the invitee name from an invite link. It returns the empty
// string when the link carries no invite parameter.
func Decode(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invite: parse url: %w", err)
	}
	return strings.TrimSpace(parsed.Query().Get(ParamName)), nil
}

// Link pairs an invitee's name with the personalized URL built for it.
type Link struct {
	Name string
	URL  string
}

// EncodeBulk builds one link per line of the given block, keeping each name
// alongside its URL. Blank lines are skipped; input order is preserved.
func EncodeBulk(baseURL, eventID, block string) ([]Link, error) {
	var links []Link
	for _, line := range strings.Split(block, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		link, err := Encode(baseURL, eventID, name)
		if err != nil {
			return nil, err
		}
		links = append(links, Link{Name: name, URL: link})
	}
	return links, nil
}
