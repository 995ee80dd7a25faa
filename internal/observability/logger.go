package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeStep       EventType = "step"
	EventTypeGate       EventType = "gate"
	EventTypeQuery      EventType = "sql_query"
	EventTypeWrite      EventType = "sql_write"
	EventTypeCheckpoint EventType = "checkpoint"
	EventTypePolicy     EventType = "policy_check"
	EventTypeHeartbeat  EventType = "heartbeat"
	EventTypeLLM        EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	ThreadID  string    `json:"thread_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

// LogStep records a state-machine transition for a thread.
func (l *Logger) LogStep(threadID, from, to string) {
	l.Log(Event{
		Type:     EventTypeStep,
		ThreadID: threadID,
		Data: map[string]string{
			"from": from,
			"to":   to,
		},
	})
}

// LogGate records a confirmation gate opening or resolving.
func (l *Logger) LogGate(threadID, outcome, pendingAction string) {
	l.Log(Event{
		Type:     EventTypeGate,
		ThreadID: threadID,
		Data: map[string]string{
			"outcome":        outcome,
			"pending_action": pendingAction,
		},
	})
}

// LogQuery records a read against the operational store.
func (l *Logger) LogQuery(threadID, statement string, rowCount int) {
	l.Log(Event{
		Type:     EventTypeQuery,
		ThreadID: threadID,
		Data: map[string]any{
			"statement": statement,
			"row_count": rowCount,
		},
	})
}

// LogWrite records an executed mutation and its affected row count.
func (l *Logger) LogWrite(threadID, statement string, affected int64) {
	l.Log(Event{
		Type:     EventTypeWrite,
		ThreadID: threadID,
		Data: map[string]any{
			"statement":     statement,
			"affected_rows": affected,
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

// LogLLM captures a full interpreter exchange to the jsonl audit file.
func (l *Logger) LogLLM(threadID, call string, prompt any, response string) {
	l.Log(Event{
		Type:     EventTypeLLM,
		ThreadID: threadID,
		Data: map[string]any{
			"call":     call,
			"prompt":   prompt,
			"response": response,
		},
	})
}
