package domain

import "time"

// DefaultCurrency is the currency all catalog prices are quoted in.
const DefaultCurrency = "GHS"

// Video is read-only catalog metadata.
type Video struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Duration     int       `json:"duration" yaml:"duration"` // seconds
	Price        int64     `json:"price" yaml:"price"`       // minor units (pesewas)
	Currency     string    `json:"currency" yaml:"currency"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty" yaml:"thumbnail_url"`
	VideoURL     string    `json:"-" yaml:"video_url"` // released only through the playback gate
	Level        string    `json:"level" yaml:"level"`
	Subject      string    `json:"subject" yaml:"subject"`
	CreatedAt    time.Time `json:"createdAt" yaml:"-"`
}

// StreamResponse is returned by the playback gate to an entitled user.
type StreamResponse struct {
	VideoID   string    `json:"videoId"`
	VideoURL  string    `json:"videoUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
	Remaining string    `json:"remaining"`
}

// DefaultCatalog returns the built-in catalog used when no catalog file is configured.
func DefaultCatalog() []Video {
	return []Video{
		{
			ID:           "gis_documentary_001",
			Title:        "Ghana International School Documentary",
			Description:  "An exclusive documentary showcasing the history and excellence of Ghana International School.",
			Duration:     3275,  // 54:35
			Price:        10000, // GH₵100.00
			Currency:     DefaultCurrency,
			ThumbnailURL: "https://i0.wp.com/gis.edu.gh/wp-content/uploads/2025/08/Header_1_green_logo_gis_at_70-1.png",
			VideoURL:     "https://www.dropbox.com/scl/fi/kocss2x7f20580aw2b826/Ghana-International-School-Doc-Final.mov?dl=1",
			Level:        "All Levels",
			Subject:      "School Documentary",
		},
	}
}
