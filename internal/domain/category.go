package domain

import "time"

// Category is a routing key; its name doubles as a staff department.
type Category struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategorySummary aggregates staff and ticket counts for one category.
type CategorySummary struct {
	Category
	StaffCount  int
	TicketCount int
}
