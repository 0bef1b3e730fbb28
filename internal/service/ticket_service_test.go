package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func ptr[T any](v T) *T { return &v }

func statusOf(err error) int {
	if de := apperrors.ToDomainError(err); de != nil {
		return de.HTTPStatus
	}
	return 0
}

func TestCreateTicketClientOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	client := h.user(t, "client", domain.RoleClient, "")
	staff := h.user(t, "staff", domain.RoleStaff, "Network")

	ticket, err := h.ticketSvc.CreateTicket(ctx, client, TicketCreateInput{Title: "  VPN down ", Priority: "High"})
	if err != nil {
		t.Fatal(err)
	}
	if ticket.Title != "VPN down" || ticket.Status != domain.TicketStatusPending || ticket.UserID != client.ID {
		t.Errorf("ticket = %+v", ticket)
	}
	if ticket.HasCategory() || ticket.IsAssigned() {
		t.Errorf("new ticket should be unrouted: %+v", ticket)
	}

	if _, err := h.ticketSvc.CreateTicket(ctx, staff, TicketCreateInput{Title: "x"}); statusOf(err) != http.StatusForbidden {
		t.Errorf("staff create: %v", err)
	}
	if _, err := h.ticketSvc.CreateTicket(ctx, client, TicketCreateInput{Title: " "}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("blank title: %v", err)
	}
}

func TestListTicketsScopedByRole(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.user(t, "admin", domain.RoleAdmin, "")
	alice := h.user(t, "alice", domain.RoleClient, "")
	bob := h.user(t, "bob", domain.RoleClient, "")
	staff := h.user(t, "staff", domain.RoleStaff, "Network")
	h.ticket(t, domain.Ticket{Title: "a1", UserID: alice.ID})
	h.ticket(t, domain.Ticket{Title: "a2", UserID: alice.ID, Category: "Network", AssignedStaffID: staff.ID})
	h.ticket(t, domain.Ticket{Title: "b1", UserID: bob.ID, Category: "Hardware"})

	tests := []struct {
		name   string
		actor  *domain.User
		filter TicketListFilter
		want   int
	}{
		{"admin sees all", admin, TicketListFilter{}, 3},
		{"admin unassigned", admin, TicketListFilter{Unassigned: ptr(true)}, 1},
		{"admin categorized", admin, TicketListFilter{Unassigned: ptr(false)}, 2},
		{"client sees own", alice, TicketListFilter{}, 2},
		{"staff sees assigned", staff, TicketListFilter{}, 1},
		{"paged", admin, TicketListFilter{Limit: 2, Offset: 2}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.ticketSvc.ListTickets(ctx, tc.actor, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tc.want {
				t.Errorf("got %d tickets, want %d", len(got), tc.want)
			}
		})
	}
}

func TestGetTicketVisibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.user(t, "owner", domain.RoleClient, "")
	other := h.user(t, "other", domain.RoleClient, "")
	staff := h.user(t, "staff", domain.RoleStaff, "Network")
	t1 := h.ticket(t, domain.Ticket{Title: "T1", UserID: owner.ID})

	if _, err := h.ticketSvc.GetTicket(ctx, owner, t1.ID); err != nil {
		t.Errorf("owner: %v", err)
	}
	if _, err := h.ticketSvc.GetTicket(ctx, other, t1.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("other client: %v", err)
	}
	if _, err := h.ticketSvc.GetTicket(ctx, staff, t1.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("unassigned staff: %v", err)
	}
	if _, err := h.ticketSvc.GetTicket(ctx, owner, "nope"); statusOf(err) != http.StatusNotFound {
		t.Errorf("missing: %v", err)
	}
}

func TestUpdateTicketExplicitStatusWinsOverAssignment(t *testing.T) {
	h := newHarness(t)
	admin := h.user(t, "admin", domain.RoleAdmin, "")
	staff := h.user(t, "staff", domain.RoleStaff, "Network")
	t1 := h.ticket(t, domain.Ticket{Title: "T1"})

	ticket, result, err := h.ticketSvc.UpdateTicket(context.Background(), admin, t1.ID, TicketUpdateInput{
		Category: ptr("Network"),
		Status:   ptr("in progress"),
		Priority: ptr("Low"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result == nil || !result.Assigned || result.Staff.ID != staff.ID {
		t.Fatalf("result = %+v", result)
	}
	if ticket.Status != domain.TicketStatusInProgress || ticket.Priority != "Low" {
		t.Errorf("ticket = %+v", ticket)
	}
	stored := h.reload(t, t1.ID)
	if stored.Version != t1.Version+1 {
		t.Errorf("expected a single save, version = %d", stored.Version)
	}
}

func TestUpdateTicketStaffPermissions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	staff := h.user(t, "staff", domain.RoleStaff, "Network")
	other := h.user(t, "other", domain.RoleStaff, "Network")
	t1 := h.ticket(t, domain.Ticket{Title: "T1", Category: "Network", AssignedStaffID: staff.ID, Status: domain.TicketStatusOpen})

	if _, _, err := h.ticketSvc.UpdateTicket(ctx, staff, t1.ID, TicketUpdateInput{Category: ptr("Software")}); statusOf(err) != http.StatusForbidden {
		t.Errorf("staff category change: %v", err)
	}
	if _, _, err := h.ticketSvc.UpdateTicket(ctx, other, t1.ID, TicketUpdateInput{Status: ptr("Resolved")}); statusOf(err) != http.StatusForbidden {
		t.Errorf("other staff status change: %v", err)
	}
	if _, _, err := h.ticketSvc.UpdateTicket(ctx, staff, t1.ID, TicketUpdateInput{Status: ptr("bogus")}); statusOf(err) != http.StatusBadRequest {
		t.Errorf("unknown status: %v", err)
	}

	ticket, result, err := h.ticketSvc.UpdateTicket(ctx, staff, t1.ID, TicketUpdateInput{Status: ptr("Resolved")})
	if err != nil {
		t.Fatal(err)
	}
	if result != nil {
		t.Errorf("status-only update ran assignment: %+v", result)
	}
	if ticket.Status != domain.TicketStatusResolved || ticket.AssignedStaffID != staff.ID {
		t.Errorf("ticket = %+v", ticket)
	}
}

func TestUpdateTicketStaleVersion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.user(t, "admin", domain.RoleAdmin, "")
	t1 := h.ticket(t, domain.Ticket{Title: "T1"})

	stale := *t1
	if _, _, err := h.ticketSvc.UpdateTicket(ctx, admin, t1.ID, TicketUpdateInput{Priority: ptr("High")}); err != nil {
		t.Fatal(err)
	}
	if err := h.tickets.Save(ctx, &stale); statusOf(err) != http.StatusConflict {
		t.Errorf("stale save: %v", err)
	}
}

func TestDeleteTicket(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := h.user(t, "admin", domain.RoleAdmin, "")
	client := h.user(t, "client", domain.RoleClient, "")
	t1 := h.ticket(t, domain.Ticket{Title: "T1", UserID: client.ID})

	if err := h.ticketSvc.DeleteTicket(ctx, client, t1.ID); statusOf(err) != http.StatusForbidden {
		t.Errorf("client delete: %v", err)
	}
	if err := h.ticketSvc.DeleteTicket(ctx, admin, t1.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.ticketSvc.DeleteTicket(ctx, admin, t1.ID); statusOf(err) != http.StatusNotFound {
		t.Errorf("second delete: %v", err)
	}
}

func TestReopenAssignedPending(t *testing.T) {
	h := newHarness(t)
	staff := h.user(t, "staff", domain.RoleStaff, "Network")
	stuck := h.ticket(t, domain.Ticket{Title: "stuck", Category: "Network", AssignedStaffID: staff.ID})
	fresh := h.ticket(t, domain.Ticket{Title: "fresh"})

	n, err := h.ticketSvc.ReopenAssignedPending(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("reopened %d, want 1", n)
	}
	if got := h.reload(t, stuck.ID).Status; got != domain.TicketStatusOpen {
		t.Errorf("stuck status = %q", got)
	}
	if got := h.reload(t, fresh.ID).Status; got != domain.TicketStatusPending {
		t.Errorf("fresh status = %q", got)
	}
}
