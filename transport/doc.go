// Package transport opens the byte channel a bootloader.Programmer runs over.
//
// Three kinds of target are supported:
//
//	/dev/ttyUSB0, COM5, serial:///dev/ttyUSB0   local serial line
//	tcp://bridge.local:5169, 192.168.1.20:5169  raw TCP tunnel to a bridge agent
//	ws://bridge.local:5169/ws                   WebSocket tunnel to a bridge agent
//
// Every channel bounds its reads. A read that outlives the bound fails with
// an error wrapping protocol.ErrTimeout, so a silent device never blocks a
// programming run.
//
//	ch, err := transport.Open(ctx, "tcp://bridge.local")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ch.Close()
//
//	prog := bootloader.New(ch)
package transport
