package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"go-trkr/config"
	"go-trkr/debug"
	"go-trkr/midi"
	"go-trkr/sequencer"
	"go-trkr/theme"
	"go-trkr/tui"
)

var (
	cfgPath     string
	portName    string
	tempoFlag   int
	projectName string
	debugFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "go-trkr",
	Short: "Terminal MIDI phrase tracker",
	Long: `go-trkr sequences up to 128 phrases across an 8-channel, 64-row
arrangement and plays them to a MIDI output port.

Examples:
  go-trkr                          open the tracker
  go-trkr --project demo --port IAC
  go-trkr play --row 0 --song      headless playback
  go-trkr export -o song.mid       render to a Standard MIDI File`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default ~/.config/go-trkr/config.yaml)")
	pf.StringVarP(&portName, "port", "p", "", "MIDI output port name")
	pf.IntVarP(&tempoFlag, "tempo", "t", 0, "tempo in BPM (40-300)")
	pf.StringVar(&projectName, "project", "", "project to open (latest save)")
	pf.BoolVar(&debugFlag, "debug", false, "write a debug log")

	rootCmd.AddCommand(playCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if cfgPath != "" {
		cfg, err = config.LoadFile(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	// Flags override the file
	if cmd.Flags().Changed("tempo") {
		cfg.Play.Tempo = config.ClampTempo(tempoFlag)
	}
	if portName != "" {
		cfg.Output.PortName = portName
	}
	if projectName != "" {
		cfg.UI.LastProject = projectName
	}
	if debugFlag {
		cfg.Debug = true
	}

	if cfg.Debug {
		path := cfg.LogFile
		if path == "" {
			path = debug.DefaultPath()
		}
		if err := debug.Enable(path); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
	}
	return cfg, nil
}

func saveConfig(cfg *config.Config) {
	var err error
	if cfgPath != "" {
		err = cfg.SaveFile(cfgPath)
	} else {
		err = cfg.Save()
	}
	if err != nil {
		debug.Warn("main", "save config: %v", err)
	}
}

// engine is everything a command needs to play or render a project
type engine struct {
	bank    *sequencer.Bank
	arr     *sequencer.Arrangement
	sched   *sequencer.Scheduler
	store   *sequencer.ProjectStore
	project string
}

func newEngine(cmd *cobra.Command, cfg *config.Config, sink midi.Sink) (*engine, error) {
	mode, err := sequencer.ParseMode(cfg.Play.Mode)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.ProjectsPath()
	if err != nil {
		return nil, err
	}

	e := &engine{
		bank:    sequencer.NewBank(),
		arr:     sequencer.NewArrangement(),
		store:   sequencer.NewProjectStore(dir),
		project: cfg.UI.LastProject,
	}
	e.sched = sequencer.NewScheduler(e.bank, e.arr, sink,
		sequencer.WithTempo(cfg.Play.Tempo),
		sequencer.WithMode(mode),
		sequencer.WithNoteLength(cfg.NoteLength()),
		sequencer.WithStopTimeout(cfg.StopTimeout()),
	)

	if e.project == "" {
		e.project = "untitled"
		return e, nil
	}
	saves, err := e.store.ListSaves(e.project)
	if err != nil {
		return nil, err
	}
	if len(saves) == 0 {
		debug.Log("main", "new project %s", e.project)
		return e, nil
	}
	doc, err := e.store.Load(e.project, saves[0].Filename)
	if err != nil {
		return nil, err
	}
	if err := doc.Apply(e.bank, e.arr, e.sched); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("tempo") {
		e.sched.SetTempo(tempoFlag)
	}
	debug.Log("main", "loaded %s/%s", e.project, saves[0].Filename)
	return e, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	defer debug.Disable()

	sink := midi.NewPortSink(cfg.Output.PortName)
	defer midi.CloseDriver()
	defer sink.Close()
	if cfg.Output.AutoConnect && cfg.Output.PortName != "" {
		if err := sink.Connect(); err != nil {
			debug.Warn("main", "connect %s: %v", cfg.Output.PortName, err)
		}
	}

	eng, err := newEngine(cmd, cfg, sink)
	if err != nil {
		return err
	}

	// Hot-plug watcher in background
	watcher := midi.NewPortWatcher(sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	var input *midi.NoteInput
	if cfg.Input.PortName != "" {
		input, err = midi.OpenNoteInput(cfg.Input.PortName)
		if err != nil {
			debug.Warn("main", "keyboard input: %v", err)
		} else {
			defer input.Close()
		}
	}

	th := theme.New(theme.Load(cfg.UI.Palette))
	m := tui.NewModel(tui.Session{
		Bank:      eng.bank,
		Arr:       eng.arr,
		Transport: sequencer.NewTransport(eng.sched),
		Store:     eng.store,
		Project:   eng.project,
	}, th).WithPorts(sink, watcher).WithInput(input)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	cfg.UI.LastProject = eng.project
	cfg.Output.PortName = sink.PortName()
	saveConfig(cfg)
	return nil
}
