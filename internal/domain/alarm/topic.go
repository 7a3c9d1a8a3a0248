package alarm

// Topics exchanged with the broker.
const (
	// TopicStart carries the alarm status: PayloadOn or PayloadOff.
	TopicStart = "alarm/start"
	// TopicTargetLocation carries the target chosen for the current cycle.
	TopicTargetLocation = "alarm/targetLocation"
	// TopicScan commands the scanning peer.
	TopicScan = "esp32/scan"
	// TopicLocation is where the scanning peer reports detected tags.
	TopicLocation = "esp32/location"
)

// Payloads published on the status and command topics.
const (
	PayloadOn        = "ON"
	PayloadOff       = "OFF"
	PayloadScanStart = "start"
)
