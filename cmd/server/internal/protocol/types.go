package protocol

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ControlMessage is the inbound subscriber -> hub instruction.
// Unknown fields are ignored; a missing action or symbol list makes the
// message invalid and it is dropped.
type ControlMessage struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}
