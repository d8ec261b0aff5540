package entity

// Properties is a property-name to value bag of one interface.
type Properties map[string]any

// InterfaceProperties maps interface names to their properties.
type InterfaceProperties map[string]Properties

// InterfaceNames returns the interface names in ifaces.
func (ip InterfaceProperties) InterfaceNames() []string {
	names := make([]string, 0, len(ip))
	for name := range ip {
		names = append(names, name)
	}
	return names
}

// Notification is a desktop-style notification raised by the action
// executor.
type Notification struct {
	ID       uint32 `json:"id"`
	Kind     string `json:"kind"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
	// TimeoutSeconds is how long the notification stays relevant; clients
	// dismiss it afterwards.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// Notification kinds.
const (
	NotificationTouchRequired = "touch_required"
	NotificationCodeCopied    = "code_copied"
	NotificationClosed        = "closed"
)
