package persistence

import (
	"fmt"

	"github.com/dukex/trainflow/pkg/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Sort fields and orders accepted by ListWorkflows.
const (
	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortByName      = "name"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

var allowedSortFields = map[string]bool{
	SortByCreatedAt: true,
	SortByUpdatedAt: true,
	SortByName:      true,
}

// ListWorkflowsOptions filters, sorts and paginates ListWorkflows.
type ListWorkflowsOptions struct {
	Category *models.WorkflowCategory
	Status   *models.WorkflowStatus

	SortBy    string
	SortOrder string

	Limit  int
	Offset int
}

// WorkflowListResult is one page of workflows.
type WorkflowListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// Normalize applies defaults and checks the sort parameters against the allowlist.
func (o ListWorkflowsOptions) Normalize() (ListWorkflowsOptions, error) {
	if o.Limit <= 0 || o.Limit > MaxListLimit {
		o.Limit = DefaultListLimit
	}

	if o.Offset < 0 {
		o.Offset = 0
	}

	if o.SortBy == "" {
		o.SortBy = SortByCreatedAt
	}

	if o.SortOrder == "" {
		o.SortOrder = SortOrderDesc
	}

	if !allowedSortFields[o.SortBy] {
		return o, fmt.Errorf("%w: %s", ErrInvalidSortField, o.SortBy)
	}

	if o.SortOrder != SortOrderAsc && o.SortOrder != SortOrderDesc {
		return o, fmt.Errorf("%w: %s", ErrInvalidSortOrder, o.SortOrder)
	}

	return o, nil
}

// Matches reports whether a workflow passes the category and status filters.
func (o ListWorkflowsOptions) Matches(workflow *models.Workflow) bool {
	if o.Category != nil && workflow.Category != *o.Category {
		return false
	}

	if o.Status != nil && workflow.Status != *o.Status {
		return false
	}

	return true
}
