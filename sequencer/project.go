package sequencer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ProjectVersion is written into every save
const ProjectVersion = 1

const timestampFormat = "2006-01-02_15-04-05"

// Project is the on-disk document: the whole bank, the arrangement and
// the transport settings
type Project struct {
	Version     int                        `json:"version"`
	Name        string                     `json:"name,omitempty"`
	Tempo       int                        `json:"tempo"`
	Mode        Mode                       `json:"mode"`
	Phrases     []PhraseDoc                `json:"phrases"`
	Arrangement [NumRows][NumChannels]*int `json:"arrangement"`
}

// PhraseDoc is one saved phrase
type PhraseDoc struct {
	Length int    `json:"length"`
	Steps  []Step `json:"steps"`
}

// Snapshot captures bank, arrangement and scheduler settings
func Snapshot(bank *Bank, arr *Arrangement, sched *Scheduler) *Project {
	doc := &Project{
		Version: ProjectVersion,
		Tempo:   sched.Tempo(),
		Mode:    sched.Mode(),
		Phrases: make([]PhraseDoc, NumPhrases),
	}
	for id := 0; id < NumPhrases; id++ {
		p := bank.Get(id)
		doc.Phrases[id] = PhraseDoc{Length: p.Length(), Steps: p.Steps}
	}
	for r := 0; r < NumRows; r++ {
		for c, id := range arr.Row(r) {
			if id != NoPhrase {
				v := id
				doc.Arrangement[r][c] = &v
			}
		}
	}
	return doc
}

// Validate checks the document before anything is applied
func (p *Project) Validate() error {
	if p.Version > ProjectVersion {
		return fmt.Errorf("project version %d is newer than supported %d", p.Version, ProjectVersion)
	}
	if len(p.Phrases) > NumPhrases {
		return fmt.Errorf("%d phrases: %w", len(p.Phrases), ErrOutOfRange)
	}
	for id, ph := range p.Phrases {
		if len(ph.Steps) != ph.Length || !ValidLength(ph.Length) {
			return fmt.Errorf("phrase %d: %w: length %d with %d steps", id, ErrInvalidLength, ph.Length, len(ph.Steps))
		}
		for i, s := range ph.Steps {
			if err := s.Validate(); err != nil {
				return fmt.Errorf("phrase %d step %d: %w", id, i, err)
			}
		}
	}
	for r := range p.Arrangement {
		for c, id := range p.Arrangement[r] {
			if id != nil {
				if err := checkPhraseID(*id); err != nil {
					return fmt.Errorf("arrangement %d/%d: %w", r, c, err)
				}
			}
		}
	}
	return nil
}

// Apply loads the document into bank, arrangement and scheduler.
// Playback must be stopped. Condition counters start from scratch.
func (p *Project) Apply(bank *Bank, arr *Arrangement, sched *Scheduler) error {
	if sched.State().Running {
		return ErrPlaying
	}
	if err := p.Validate(); err != nil {
		return err
	}

	for id := 0; id < NumPhrases; id++ {
		if id >= len(p.Phrases) {
			bank.Clear(id)
			continue
		}
		if err := bank.Replace(id, p.Phrases[id].Steps); err != nil {
			return err
		}
	}
	for r := range p.Arrangement {
		for c, id := range p.Arrangement[r] {
			if id == nil {
				arr.Clear(r, c)
			} else {
				arr.Set(r, c, *id)
			}
		}
	}

	if p.Tempo != 0 {
		sched.SetTempo(p.Tempo)
	}
	if err := sched.SetMode(p.Mode); err != nil {
		return err
	}
	sched.Evaluator().ResetCounters()
	return nil
}

// SaveInfo represents a saved project file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// ProjectStore keeps projects as folders of timestamped JSON saves:
// <dir>/<project>/2006-01-02_15-04-05[_name].json
type ProjectStore struct {
	dir string
	now func() time.Time
}

// NewProjectStore creates a store rooted at dir
func NewProjectStore(dir string) *ProjectStore {
	return &ProjectStore{dir: dir, now: time.Now}
}

// Dir returns the root directory
func (ps *ProjectStore) Dir() string {
	return ps.dir
}

// ProjectDir returns the path to a specific project
func (ps *ProjectStore) ProjectDir(projectName string) string {
	return filepath.Join(ps.dir, projectName)
}

// ListProjects returns all project folder names
func (ps *ProjectStore) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(ps.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	var projects []string
	for _, entry := range entries {
		if entry.IsDir() {
			projects = append(projects, entry.Name())
		}
	}

	sort.Strings(projects)
	return projects, nil
}

// ListSaves returns timestamped saves for a project, newest first
func (ps *ProjectStore) ListSaves(projectName string) ([]SaveInfo, error) {
	entries, err := os.ReadDir(ps.ProjectDir(projectName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if info, ok := parseSaveName(entry.Name()); ok {
			saves = append(saves, info)
		}
	}

	// Sort by timestamp, newest first
	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})

	return saves, nil
}

// parseSaveName parses 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
func parseSaveName(filename string) (SaveInfo, bool) {
	if !strings.HasSuffix(filename, ".json") {
		return SaveInfo{}, false
	}
	baseName := strings.TrimSuffix(filename, ".json")
	if len(baseName) < len(timestampFormat) {
		return SaveInfo{}, false
	}

	ts, err := time.Parse(timestampFormat, baseName[:len(timestampFormat)])
	if err != nil {
		return SaveInfo{}, false
	}

	name := ""
	rest := baseName[len(timestampFormat):]
	if len(rest) > 1 && rest[0] == '_' {
		name = rest[1:]
	}
	return SaveInfo{Filename: filename, Name: name, Timestamp: ts}, true
}

// Save writes doc into project with a timestamped filename and returns it
func (ps *ProjectStore) Save(projectName, saveName string, doc *Project) (string, error) {
	if projectName == "" {
		projectName = "untitled"
	}

	dir := ps.ProjectDir(projectName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	doc.Name = projectName
	doc.Version = ProjectVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode project: %w", err)
	}

	filename := ps.now().Format(timestampFormat)
	if saveName != "" {
		filename += "_" + sanitizeFilename(saveName)
	}
	filename += ".json"

	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

// Load reads a specific save (or the most recent if filename is empty)
func (ps *ProjectStore) Load(projectName, filename string) (*Project, error) {
	if filename == "" {
		saves, err := ps.ListSaves(projectName)
		if err != nil {
			return nil, err
		}
		if len(saves) == 0 {
			return nil, fmt.Errorf("no saves found in project %s", projectName)
		}
		filename = saves[0].Filename // saves are sorted newest first
	}

	data, err := os.ReadFile(filepath.Join(ps.ProjectDir(projectName), filename))
	if err != nil {
		return nil, err
	}

	var doc Project
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &doc, nil
}

// DeleteSave deletes a specific save file
func (ps *ProjectStore) DeleteSave(projectName, filename string) error {
	return os.Remove(filepath.Join(ps.ProjectDir(projectName), filename))
}

// RenameSave changes the name part of a save, keeping its timestamp
func (ps *ProjectStore) RenameSave(projectName, oldFilename, newName string) (string, error) {
	info, ok := parseSaveName(oldFilename)
	if !ok {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}

	newFilename := info.Timestamp.Format(timestampFormat)
	if newName != "" {
		newFilename += "_" + sanitizeFilename(newName)
	}
	newFilename += ".json"

	dir := ps.ProjectDir(projectName)
	if err := os.Rename(filepath.Join(dir, oldFilename), filepath.Join(dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

// DeleteProject deletes entire project folder
func (ps *ProjectStore) DeleteProject(name string) error {
	return os.RemoveAll(ps.ProjectDir(name))
}

// RenameProject renames a project folder and returns the name it was stored under
func (ps *ProjectStore) RenameProject(oldName, newName string) (string, error) {
	name := sanitizeFilename(strings.TrimSpace(newName))
	if name == "" {
		return "", fmt.Errorf("empty project name")
	}
	if _, err := os.Stat(ps.ProjectDir(name)); err == nil {
		return "", fmt.Errorf("project %q already exists", name)
	}
	if err := os.Rename(ps.ProjectDir(oldName), ps.ProjectDir(name)); err != nil {
		return "", err
	}
	return name, nil
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}
