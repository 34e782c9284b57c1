package projections

import (
	"context"
	"sort"

	"complaintdesk/internal/domain/category"
	"complaintdesk/internal/domain/complaint"
)

// DashboardComplaintLister defines the backend client interface needed by
// the dashboard projection.
type DashboardComplaintLister interface {
	ListComplaints(ctx context.Context, cat category.Category, token string) ([]complaint.Complaint, error)
}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Category category.Category
	Token    string
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	API DashboardComplaintLister
}

// GetDashboardResult is the admin dashboard view model.
type GetDashboardResult struct {
	Category     category.Category
	Complaints   []complaint.Complaint
	Total        int
	StatusCounts map[string]int
}

// QueryGetDashboard fetches the category's complaints with the stored
// session token, newest first.
// POST: a backend rejection (including 401 for a stale token) is returned
// unchanged for the handler to interpret
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (GetDashboardResult, error) {
	complaints, err := deps.API.ListComplaints(ctx, query.Category, query.Token)
	if err != nil {
		return GetDashboardResult{}, err
	}

	// The backend orders newest first; re-sort so the view never depends
	// on it.
	sort.SliceStable(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt.After(complaints[j].CreatedAt)
	})

	counts := make(map[string]int)
	for _, c := range complaints {
		counts[c.Status]++
	}

	return GetDashboardResult{
		Category:     query.Category,
		Complaints:   complaints,
		Total:        len(complaints),
		StatusCounts: counts,
	}, nil
}
