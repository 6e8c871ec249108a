package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"go-trkr/debug"
	"go-trkr/midi"
	"go-trkr/sequencer"
)

var (
	playRow  int
	playSong bool
	playDry  bool
	playFor  time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a project without the UI (ctrl+c stops)",
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().IntVarP(&playRow, "row", "r", 0, "row to start from")
	playCmd.Flags().BoolVar(&playSong, "song", false, "song mode (advance through rows)")
	playCmd.Flags().BoolVar(&playDry, "dry-run", false, "print notes instead of sending MIDI")
	playCmd.Flags().DurationVar(&playFor, "for", 0, "stop after this long (0 = until interrupted)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debug.Disable()

	var sink midi.Sink
	if playDry {
		out := cmd.OutOrStdout()
		sink = midi.Tee(midi.LogSink{}, midi.FuncSink(func(ev midi.Event) {
			fmt.Fprintln(out, ev)
		}))
	} else {
		if cfg.Output.PortName == "" {
			return fmt.Errorf("no output port: pass --port or set output.port in the config (see miditest list)")
		}
		ps := midi.NewPortSink(cfg.Output.PortName)
		if err := ps.Connect(); err != nil {
			return err
		}
		defer midi.CloseDriver()
		defer ps.Close()
		sink = ps
	}

	eng, err := newEngine(cmd, cfg, sink)
	if err != nil {
		return err
	}
	if playSong {
		if err := eng.sched.SetMode(sequencer.ModeSong); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if playFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, playFor)
		defer cancel()
	}

	tr := sequencer.NewTransport(eng.sched)
	if err := tr.Launch(playRow); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "playing %s from row %02X, %s mode, %d bpm\n",
		eng.project, playRow, eng.sched.Mode(), eng.sched.Tempo())

	for {
		select {
		case <-ctx.Done():
			if !tr.Close() {
				return fmt.Errorf("clock loop did not stop")
			}
			return nil
		case <-eng.sched.Updates():
			st := eng.sched.State()
			if !st.Running {
				return nil
			}
			debug.LogEvery(16, "play", "row=%02X tick=%d", st.ActiveRow, st.BarTick)
		}
	}
}
