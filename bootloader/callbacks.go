package bootloader

import "time"

// Programming phases reported through Progress.Phase.
const (
	PhaseIdentifying = "identifying"
	PhaseSelecting   = "selecting"
	PhaseErasing     = "erasing"
	PhaseWriting     = "writing"
	PhaseResetting   = "resetting"
	PhaseComplete    = "complete"
)

// Progress contains information about the programming progress.
// Passed to ProgressCallback during programming operations.
type Progress struct {
	// Phase is one of the Phase* constants
	Phase string

	// CurrentChunk is the number of chunks acknowledged so far
	CurrentChunk int

	// TotalChunks is the number of Flash Write commands the image needs
	TotalChunks int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// BytesWritten is the number of image bytes acknowledged so far
	BytesWritten int

	// TotalBytes is the image size
	TotalBytes int

	// ElapsedTime is the time elapsed since programming started
	ElapsedTime time.Duration
}

// ProgressCallback is called periodically during programming to report progress.
// Implementations should return quickly to avoid blocking the programming operation.
//
// Example:
//
//	prog := bootloader.New(device,
//	    bootloader.WithProgressCallback(func(p bootloader.Progress) {
//	        fmt.Printf("[%s] %.1f%% - chunk %d/%d\n",
//	            p.Phase, p.Percentage, p.CurrentChunk, p.TotalChunks)
//	    }),
//	)
type ProgressCallback func(Progress)

// Logger is an optional logging interface that can be provided to the programmer.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
//
//	prog := bootloader.New(device, bootloader.WithLogger(&StdLogger{}))
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

// ReadTimeoutSetter is implemented by channels whose reads can be bounded,
// such as go.bug.st/serial ports and the channels returned by package transport.
type ReadTimeoutSetter interface {
	SetReadTimeout(t time.Duration) error
}
