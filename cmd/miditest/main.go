package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"go-trkr/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	defer midi.CloseDriver()

	var err error
	switch os.Args[1] {
	case "list":
		err = listPorts()
	case "note":
		err = sendNote(os.Args[2:])
	case "keys":
		err = echoKeys(os.Args[2:])
	case "watch":
		watchPorts()
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                     - List all MIDI ports")
	fmt.Println("  note <port> [pitch] [ch] - Send one 50ms note")
	fmt.Println("  keys <port>              - Print notes played on an input")
	fmt.Println("  watch                    - Report output ports as they come and go")
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")

	ins, err := midi.InPorts()
	if err != nil {
		return err
	}
	fmt.Println("=== MIDI Input Ports ===")
	for i, name := range ins {
		fmt.Printf("  %d: %s\n", i, name)
	}

	outs, err := midi.OutPorts()
	if err != nil {
		return err
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, name := range outs {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

func sendNote(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: miditest note <port> [pitch] [channel]")
	}
	pitch, ch := 60, 0
	if len(args) > 1 {
		p, err := strconv.Atoi(args[1])
		if err != nil || p < 0 || p > 127 {
			return fmt.Errorf("bad pitch %q", args[1])
		}
		pitch = p
	}
	if len(args) > 2 {
		c, err := strconv.Atoi(args[2])
		if err != nil || c < 0 || c > 15 {
			return fmt.Errorf("bad channel %q", args[2])
		}
		ch = c
	}

	sink := midi.NewPortSink(args[0])
	defer sink.Close()
	if err := sink.Connect(); err != nil {
		return err
	}

	fmt.Printf("%s on %s ch %d\n", midi.NoteName(uint8(pitch)), args[0], ch+1)
	sink.NoteOn(uint8(ch), uint8(pitch), 100)
	time.Sleep(50 * time.Millisecond)
	sink.NoteOff(uint8(ch), uint8(pitch))
	time.Sleep(100 * time.Millisecond)
	return nil
}

func echoKeys(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: miditest keys <port>")
	}
	in, err := midi.OpenNoteInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.Name())
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-in.Notes():
			fmt.Printf("  %-4s vel %3d ch %d\n", midi.NoteName(n.Note), n.Velocity, n.Channel+1)
		}
	}
}

func watchPorts() {
	fmt.Println("Watching output ports. Ctrl+C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := midi.NewPortWatcher(nil)
	go w.Run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			verb := "added"
			if ev.Type == midi.PortRemoved {
				verb = "removed"
			}
			fmt.Printf("[%s] %s %s\n", time.Now().Format("15:04:05"), verb, ev.Name)
		}
	}
}
