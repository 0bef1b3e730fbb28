package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CategoryResponse is the public category listing entry.
type CategoryResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CategorySummaryResponse is the management view of a category.
type CategorySummaryResponse struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Date       time.Time `json:"date"`
	UpdatedAt  time.Time `json:"updatedAt"`
	StaffCount int       `json:"staffCount"`
	Tickets    int       `json:"tickets"`
}

// NotificationResponse is one entry of a staff member's inbox.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	StaffID   string                  `json:"staffId"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	TicketID  string                  `json:"ticketId"`
	MessageID *string                 `json:"messageId"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewCategoryResponses converts the public listing.
func NewCategoryResponses(categories []domain.Category) []CategoryResponse {
	items := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, CategoryResponse{Code: category.Code, Name: category.Name})
	}
	return items
}

// NewCategorySummaryResponse converts a management summary.
func NewCategorySummaryResponse(summary domain.CategorySummary) CategorySummaryResponse {
	return CategorySummaryResponse{
		ID:         summary.ID,
		Code:       summary.Code,
		Name:       summary.Name,
		Date:       summary.CreatedAt,
		UpdatedAt:  summary.UpdatedAt,
		StaffCount: summary.StaffCount,
		Tickets:    summary.TicketCount,
	}
}

// NewNotificationResponses converts an inbox listing.
func NewNotificationResponses(items []domain.Notification) []NotificationResponse {
	resp := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		resp = append(resp, NotificationResponse{
			ID:        n.ID,
			StaffID:   n.StaffID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			TicketID:  n.TicketID,
			MessageID: n.MessageID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return resp
}
