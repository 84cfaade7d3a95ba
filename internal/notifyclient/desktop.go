package notifyclient

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"foodhub/internal/domain"
)

// DesktopNotifier raises a system notification through an external
// command, but only once the operator has granted permission.
type DesktopNotifier struct {
	permission Permission
	command    []string
	runner     CommandRunner
}

func NewDesktopNotifier(permission Permission, command []string, runner CommandRunner) *DesktopNotifier {
	return &DesktopNotifier{
		permission: permission,
		command:    command,
		runner:     runner,
	}
}

func (d *DesktopNotifier) Name() string { return "desktop_notification" }

func (d *DesktopNotifier) Apply(ctx context.Context, event domain.Event) error {
	if d.permission != PermissionGranted || event.Order == nil {
		return nil
	}
	if len(d.command) == 0 {
		return fmt.Errorf("no notify command configured")
	}

	title, body := notificationText(*event.Order)
	args := append(append([]string(nil), d.command[1:]...), title, body)
	return d.runner.Run(ctx, nil, d.command[0], args...)
}

func notificationText(o domain.EventOrderRef) (string, string) {
	title := fmt.Sprintf("Yeni sipariş #%d", o.ID)
	name := "Misafir"
	if o.DeliveryName != nil && *o.DeliveryName != "" {
		name = *o.DeliveryName
	}
	body := fmt.Sprintf("%s · %s TL", name, decimal.NewFromFloat(o.Total).StringFixed(2))
	return title, body
}
