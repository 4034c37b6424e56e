package models

// Location represents a geographic location with latitude and longitude
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// City represents one validated settlement record
type City struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	District   string  `json:"district"`
	Population int     `json:"population"`
	Subject    string  `json:"subject"`
}

// BoundingBox represents a rectangular area defined by two corners
type BoundingBox struct {
	BottomLeft Location
	TopRight   Location
}
