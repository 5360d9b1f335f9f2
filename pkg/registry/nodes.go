package registry

import (
	"github.com/dukex/trainflow/pkg/nodes/action"
	"github.com/dukex/trainflow/pkg/nodes/approval"
	"github.com/dukex/trainflow/pkg/nodes/condition"
	"github.com/dukex/trainflow/pkg/nodes/notification"
	"github.com/dukex/trainflow/pkg/nodes/terminal"
)

// RegisterDefaultNodes registers all built-in node factories with the registry.
func (r *Registry) RegisterDefaultNodes() {
	r.RegisterNode(terminal.NewStartNodeFactory())
	r.RegisterNode(approval.NewApprovalNodeFactory())
	r.RegisterNode(condition.NewConditionNodeFactory())
	r.RegisterNode(notification.NewNotificationNodeFactory())
	r.RegisterNode(action.NewActionNodeFactory())
	r.RegisterNode(terminal.NewEndNodeFactory())
}
