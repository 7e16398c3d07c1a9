package constants

// NATS Subjects
const (
	// Script execution, request/reply. Format: arbiter.script.{script_name}
	SubjectScriptRun = "arbiter.script.%s"

	// Externally produced notifications relayed into broker channels.
	// The token after the prefix is the channel name.
	SubjectNotifyPrefix   = "arbiter.notify."
	SubjectNotifyWildcard = "arbiter.notify.>"
)

// NSQ Topics
const (
	TopicActionCompleted = "arbiter_action_completed"
)
