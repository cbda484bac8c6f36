package models

import "time"

// Platform is one stored credential owned by a single user.
type Platform struct {
	ID          string    `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	CreatedDate time.Time `json:"created_date"`
}
