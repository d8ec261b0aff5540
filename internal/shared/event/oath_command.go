package event

const OATHCommandDestination string = "oath_command"
const OATHCommandConsumerDaemon string = "oath_command_daemon"

// OATHCommandMessage asks the daemon to run an operation on a credential.
type OATHCommandMessage struct {
	Action         string `json:"action"`
	DeviceID       string `json:"device_id"`
	Credential     string `json:"credential"`
	FallbackToCopy bool   `json:"fallback_to_copy"`
}
