package cmd

import (
	"github.com/pterm/pterm"
)

func init() {
	pterm.DefaultLogger.ShowTime = true
	pterm.DefaultLogger.TimeFormat = "02 Jan 15:04:05"
	pterm.DefaultLogger.MaxWidth = 1000
}

// ptermLogger adapts pterm's structured logger to the Logger interface
// shared by the library packages.
type ptermLogger struct {
	l *pterm.Logger
}

var log = &ptermLogger{l: &pterm.DefaultLogger}

func (p *ptermLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.l.Debug(msg, p.l.Args(keysAndValues...))
}

func (p *ptermLogger) Info(msg string, keysAndValues ...interface{}) {
	p.l.Info(msg, p.l.Args(keysAndValues...))
}

func (p *ptermLogger) Error(msg string, keysAndValues ...interface{}) {
	p.l.Error(msg, p.l.Args(keysAndValues...))
}

// enableDebug shows debug messages, including every frame exchanged.
func enableDebug() {
	pterm.DefaultLogger.Level = pterm.LogLevelDebug
}
