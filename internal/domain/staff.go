package domain

// Staff is a named attribution value for check-in and return.
type Staff struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LastUpdated string `json:"lastUpdated"`
	Order       int    `json:"order"`
}
