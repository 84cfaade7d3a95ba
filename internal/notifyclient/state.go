package notifyclient

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// Permission mirrors the desktop notification permission an operator gave
// the dashboard. Only granted raises notifications.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)

// ParsePermission treats anything unrecognised as not yet asked.
func ParsePermission(raw string) Permission {
	switch p := Permission(raw); p {
	case PermissionGranted, PermissionDenied:
		return p
	}
	return PermissionDefault
}
