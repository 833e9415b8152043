package lastfm

// topTrack is one entry of tag.getTopTracks.
type topTrack struct {
	Name     string `json:"name"`
	Duration string `json:"duration"` // seconds, as a string; "0" when unknown
	MBID     string `json:"mbid"`
	URL      string `json:"url"`
	Artist   struct {
		Name string `json:"name"`
	} `json:"artist"`
}

// topTracksResponse is the JSON response for tag.getTopTracks.
type topTracksResponse struct {
	Tracks struct {
		Track []topTrack `json:"track"`
		Attr  struct {
			Tag string `json:"tag"`
		} `json:"@attr"`
	} `json:"tracks"`
}

// apiError represents a Last.fm API error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}
