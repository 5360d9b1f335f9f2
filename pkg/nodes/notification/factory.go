// Package notification provides the notification node factory for registry integration.
package notification

import (
	"github.com/dukex/trainflow/pkg/models"
	"github.com/dukex/trainflow/pkg/protocol"
)

// NotificationNodeFactory describes notification nodes.
type NotificationNodeFactory struct{}

// NewNotificationNodeFactory creates a new factory instance.
func NewNotificationNodeFactory() protocol.NodeFactory {
	return &NotificationNodeFactory{}
}

// ID returns the factory ID.
func (f *NotificationNodeFactory) ID() models.NodeType {
	return models.NodeTypeNotification
}

// Name returns the factory name.
func (f *NotificationNodeFactory) Name() string {
	return "Notification"
}

// Description returns the factory description.
func (f *NotificationNodeFactory) Description() string {
	return "Sends a templated message to the listed recipients when the workflow reaches the node"
}

// DefaultLabel returns the label of new notification nodes.
func (f *NotificationNodeFactory) DefaultLabel() string {
	return models.DefaultLabel(models.NodeTypeNotification)
}

// Schema returns the JSON schema for notification node data.
func (f *NotificationNodeFactory) Schema() map[string]any {
	return protocol.DataSchema(map[string]any{
		"recipients": map[string]any{
			"type":        "array",
			"description": "Roles or e-mail addresses that receive the message",
			"items": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"uniqueItems": true,
			"examples":    [][]string{{"requester", "manager"}, {"hr@example.com"}},
		},
		"subject": map[string]any{
			"type":        "string",
			"description": "Message subject",
			"maxLength":   200,
		},
		"template": map[string]any{
			"type":        "string",
			"description": "Name of the message template",
			"examples":    []string{"request_approved", "session_reminder"},
		},
	}, nil)
}

// References returns nothing: notifications do not bind to catalog fields.
func (f *NotificationNodeFactory) References(models.NodeConfig) []protocol.Reference {
	return nil
}
