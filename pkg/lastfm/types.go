package lastfm

import (
	"encoding/json"
	"strings"
)

// ItemType selects which chart is fetched.
type ItemType string

const (
	Albums  ItemType = "albums"
	Tracks  ItemType = "tracks"
	Artists ItemType = "artists"
)

// ValidItemTypes lists the supported chart types.
var ValidItemTypes = map[ItemType]bool{Albums: true, Tracks: true, Artists: true}

// image is one size of Last.fm artwork. The array is ordered small,
// medium, large, extralarge.
type image struct {
	URL  string `json:"#text"`
	Size string `json:"size"`
}

type images []image

// best returns the extralarge image, falling back to large.
func (im images) best() string {
	for _, i := range []int{3, 2} {
		if i < len(im) && im[i].URL != "" {
			return im[i].URL
		}
	}
	return ""
}

type artistRef struct {
	Name string `json:"name"`
}

// UnmarshalJSON accepts both {"name": ...} and the bare "#text" form used
// by some endpoints.
func (a *artistRef) UnmarshalJSON(b []byte) error {
	var s string
	if json.Unmarshal(b, &s) == nil {
		a.Name = s
		return nil
	}
	var obj struct {
		Name string `json:"name"`
		Text string `json:"#text"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	a.Name = obj.Name
	if a.Name == "" {
		a.Name = obj.Text
	}
	return nil
}

type topAlbumsResponse struct {
	status
	TopAlbums struct {
		Album []struct {
			Name   string    `json:"name"`
			Artist artistRef `json:"artist"`
			Image  images    `json:"image"`
		} `json:"album"`
	} `json:"topalbums"`
}

type topTracksResponse struct {
	status
	TopTracks struct {
		Track []struct {
			Name   string    `json:"name"`
			MBID   string    `json:"mbid"`
			Artist artistRef `json:"artist"`
		} `json:"track"`
	} `json:"toptracks"`
}

type topArtistsResponse struct {
	status
	TopArtists struct {
		Artist []struct {
			Name string `json:"name"`
			MBID string `json:"mbid"`
		} `json:"artist"`
	} `json:"topartists"`
}

type trackInfoResponse struct {
	status
	Track struct {
		Album *struct {
			Title string `json:"title"`
			Image images `json:"image"`
		} `json:"album"`
	} `json:"track"`
}

// Track is a chart entry before its artwork is resolved.
type Track struct {
	Title  string
	Artist string
	MBID   string
}

// albumLabel formats the caption of an album tile.
func albumLabel(artist, album string) string {
	return strings.TrimSpace(artist) + " – " + strings.TrimSpace(album)
}
