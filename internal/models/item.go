package models

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"owner_id"`
	// RequestID связывает вещь с запросом, по которому она создана.
	RequestID *int64 `json:"request_id,omitempty"`
}
