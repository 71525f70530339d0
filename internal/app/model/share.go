package model

// ShareRequest is handed to the native share capability.
type ShareRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

const (
	DefaultShareTitle   = "Shortened URL"
	DefaultShareText    = "Check out this shortened link!"
	DefaultShareSubject = "snipr.share"
)
