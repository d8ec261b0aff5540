package event

// OATHObjectEventsDestination carries entity.ObjectEvent JSON bodies. The
// message key is the object path.
const OATHObjectEventsDestination string = "oath_object_events"

// OATHCommandResultDestination carries the outcome of an OATHCommandMessage.
const OATHCommandResultDestination string = "oath_command_result"

type OATHCommandResultMessage struct {
	Action     string `json:"action"`
	DeviceID   string `json:"device_id"`
	Credential string `json:"credential"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}
