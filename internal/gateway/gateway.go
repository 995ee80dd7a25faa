package gateway

// Messenger defines the interface for push-capable communication
// gateways (Telegram, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific thread
	Send(threadID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
