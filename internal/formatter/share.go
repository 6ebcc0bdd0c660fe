package formatter

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/allplay/internal/models"
	"github.com/desertthunder/allplay/internal/shared"
)

// ShareParam is the query parameter carrying a shared playlist.
const ShareParam = "share"

// ShareLink encodes p as JSON into the share query parameter of base.
// Other query parameters on base are kept.
func ShareLink(base string, p models.Playlist) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base url %q: %v", shared.ErrInvalidConfig, base, err)
	}

	if p.Songs == nil {
		p.Songs = []models.Song{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to encode playlist: %w", err)
	}

	q := u.Query()
	q.Set(ShareParam, string(data))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseShareLink extracts a shared playlist from a link. found is false when the
// link carries no share parameter, which is not an error.
func ParseShareLink(link string) (p models.Playlist, found bool, err error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return models.Playlist{}, false, fmt.Errorf("%w: %v", shared.ErrInvalidShare, err)
	}
	return ParseShareQuery(u.Query())
}

// ParseShareQuery is [ParseShareLink] for already-parsed query values.
func ParseShareQuery(q url.Values) (models.Playlist, bool, error) {
	if !q.Has(ShareParam) {
		return models.Playlist{}, false, nil
	}
	p, err := DecodeShared(q.Get(ShareParam))
	return p, true, err
}

// DecodeShared parses the decoded value of a share parameter.
func DecodeShared(value string) (models.Playlist, error) {
	var p models.Playlist
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return models.Playlist{}, fmt.Errorf("%w: %v", shared.ErrInvalidShare, err)
	}
	if err := validatePlaylist(&p); err != nil {
		return models.Playlist{}, fmt.Errorf("%w: %v", shared.ErrInvalidShare, err)
	}
	return p, nil
}
