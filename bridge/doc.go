// Package bridge exposes a JN5169 UART to remote flashing tools.
//
// The agent owns one serial line. While no tool is connected the line is in
// Logging mode: a Monitor reads the application's log output at
// transport.LoggingBaud and forwards each text line to the logger. When a
// tool connects over TCP or WebSocket the agent switches the line to
// Programming mode at transport.BootloaderBaud and relays bytes both ways
// until the tool disconnects, then switches back.
//
// Only one tunnel session holds the line at a time. A second connection
// made while a session is active is closed without receiving any bytes.
//
//	line, err := bridge.NewLine(port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	go bridge.NewMonitor(line).Run(ctx)
//
//	agent := bridge.NewAgent(line, bridge.WithLogger(logger))
//	ln, _ := net.Listen("tcp", bridge.DefaultAddr)
//	err = agent.Serve(ctx, ln)
package bridge
