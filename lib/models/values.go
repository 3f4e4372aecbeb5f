package models

type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AlertPayload is the notification content fanned out to each guardian.
type AlertPayload struct {
	Title       string
	Body        string
	FullName    string
	Email       string
	PhoneNumber string
	Location    *LatLng
}
