package catalog

// Image is one rendition of cover art.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// ArtistRef names an artist on a track or album.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef names the album a track belongs to.
type AlbumRef struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is a catalog track as returned by search and lookup calls.
type Track struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Artists      []ArtistRef `json:"artists"`
	Album        AlbumRef    `json:"album"`
	DurationMs   int         `json:"duration_ms"`
	PreviewURL   *string     `json:"preview_url"`
	ExternalURLs ExternalURL `json:"external_urls"`
	Popularity   int         `json:"popularity"`
}

// ExternalURL carries the public link for a catalog object.
type ExternalURL struct {
	Spotify string `json:"spotify"`
}

// Valid reports whether the track carries every field callers rely on.
// The catalog occasionally returns skeleton tracks; they are dropped at
// every site that hands tracks to a caller.
func (t Track) Valid() bool {
	return t.ID != "" && t.Name != "" && len(t.Artists) > 0 && t.Album.ID != ""
}

// Artist is a full artist object.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Images     []Image  `json:"images"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

// Album is a full album object, including its track listing.
type Album struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Images      []Image     `json:"images"`
	Artists     []ArtistRef `json:"artists"`
	ReleaseDate string      `json:"release_date"`
	TotalTracks int         `json:"total_tracks"`
	Tracks      struct {
		Items []Track `json:"items"`
	} `json:"tracks"`
}

// Features are the audio analysis values for one track. They never change
// once computed, which is why the provider caches them.
type Features struct {
	ID               string  `json:"id"`
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMs       int     `json:"duration_ms"`
	TimeSignature    int     `json:"time_signature"`
}
