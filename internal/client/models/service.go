package models

// Service is a directory entry for a sibling service the user can launch.
type Service struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl"`
	URL         string `json:"url"`
}
