package domain

import "time"

// Division is an organizational unit of the institute, managed by directors.
type Division struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
