package service

// Broadcaster pushes events to connected operator clients. The ws hub
// implements it; services hold the interface so transport stays out of
// the service layer.
type Broadcaster interface {
	BroadcastToOperators(event string, payload any)
}

// Operator event names.
const (
	EventSessionFinished = "session_finished"
	EventReportReady     = "report_ready"
)
