package domain

import "context"

// Renderer draws one widget surface. Render must not retain f.
type Renderer interface {
	Render(f Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(f Frame)

func (fn RendererFunc) Render(f Frame) { fn(f) }

// ConnectivityProbe reports the currently active network class
type ConnectivityProbe interface {
	Current() ConnectivityType
}

// Fetcher retrieves the raw text of a carrier page
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Notification is a short user-facing message raised after a refresh
type Notification struct {
	WidgetID int
	Kind     NotificationKind
	Message  string
}

// NotificationKind classifies a Notification
type NotificationKind string

const (
	NotifySuccess            NotificationKind = "success"
	NotifyVolumeUsedUp       NotificationKind = "volume_used_up"
	NotifyFailWiFi           NotificationKind = "update_fail_wifi"
	NotifyFail               NotificationKind = "update_fail"
	NotifyFailNoConnection   NotificationKind = "update_fail_connection"
	NotifyCarrierUnsupported NotificationKind = "carrier_unsupported"
	NotifyCarrierNotSelected NotificationKind = "carrier_not_selected"
)

// Notifier delivers user notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}
