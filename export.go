package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-trkr/debug"
	"go-trkr/midi"
	"go-trkr/sequencer"
)

var (
	exportOut  string
	exportRow  int
	exportSong bool
	exportBars int
	exportSeed int64
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a project to a Standard MIDI File",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output .mid path (default <project>.mid)")
	exportCmd.Flags().IntVarP(&exportRow, "row", "r", 0, "row to start from")
	exportCmd.Flags().BoolVar(&exportSong, "song", false, "walk the song instead of looping one row")
	exportCmd.Flags().IntVar(&exportBars, "bars", 0, "pattern: repetitions (default 1); song: maximum bars (default 64)")
	exportCmd.Flags().Int64Var(&exportSeed, "seed", 0, "seed for probability and condition rolls")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debug.Disable()

	eng, err := newEngine(cmd, cfg, midi.NopSink{})
	if err != nil {
		return err
	}

	mode := eng.sched.Mode()
	if exportSong {
		mode = sequencer.ModeSong
	}
	out := exportOut
	if out == "" {
		out = eng.project + ".mid"
	}

	err = sequencer.ExportFile(out, eng.bank, eng.arr, sequencer.ExportOptions{
		StartRow:   exportRow,
		Mode:       mode,
		Bars:       exportBars,
		Seed:       exportSeed,
		Tempo:      eng.sched.Tempo(),
		NoteLength: cfg.NoteLength(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
	return nil
}
