// Package project implements the JSON project file format (full canvas
// state) and the YAML layout template format (zone descriptors only),
// plus plain-text export/import of the canvas's bounding box.
package project

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

// FileVersion is the project file format version written by Save.
const FileVersion = "1.0"

type cellRecord struct {
	X    int64  `json:"x"`
	Y    int64  `json:"y"`
	Char string `json:"char"`
	FG   *int   `json:"fg,omitempty"`
	BG   *int   `json:"bg,omitempty"`
}

type metadata struct {
	Name       string `json:"name"`
	CreatedISO string `json:"created_iso"`
	ModifiedISO string `json:"modified_iso"`
}

type cursorRecord struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

type viewportRecord struct {
	X         int64        `json:"x"`
	Y         int64        `json:"y"`
	Cursor    cursorRecord `json:"cursor"`
	Origin    cursorRecord `json:"origin"`
	YDirection string      `json:"y_direction"`
}

type gridRecord struct {
	ShowOrigin    bool   `json:"show_origin"`
	MajorInterval int    `json:"major_interval"`
	MinorInterval int    `json:"minor_interval,omitempty"`
	LineMode      string `json:"line_mode"`
	Rulers        bool   `json:"rulers"`
	Labels        bool   `json:"labels"`
	LabelInterval int    `json:"label_interval"`
}

// ZoneDescriptor is the flattened, JSON/YAML-serializable shape of a zone:
// a type tag plus the union of every variant's fields (only the fields
// relevant to Type are populated).
type ZoneDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	X           int64  `json:"x" yaml:"x"`
	Y           int64  `json:"y" yaml:"y"`
	W           int    `json:"w" yaml:"w"`
	H           int    `json:"h" yaml:"h"`
	Bookmark    string `json:"bookmark,omitempty" yaml:"bookmark,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Type string `json:"type" yaml:"type"`

	Command      string `json:"command,omitempty" yaml:"command,omitempty"`
	Interval     string `json:"interval,omitempty" yaml:"interval,omitempty"`
	WatchPath    string `json:"watch_path,omitempty" yaml:"watch_path,omitempty"`
	Path         string `json:"path,omitempty" yaml:"path,omitempty"`
	Port         int    `json:"port,omitempty" yaml:"port,omitempty"`
	FilePath     string `json:"file_path,omitempty" yaml:"file_path,omitempty"`
	RendererHint string `json:"renderer_hint,omitempty" yaml:"renderer_hint,omitempty"`
	ShellCommand string `json:"shell_command,omitempty" yaml:"shell_command,omitempty"`
	AutoScroll   bool   `json:"auto_scroll,omitempty" yaml:"auto_scroll,omitempty"`
	MaxLines     int    `json:"max_lines,omitempty" yaml:"max_lines,omitempty"`
}

type zonesRecord struct {
	Zones []ZoneDescriptor `json:"zones"`
}

// File is the on-disk JSON project format (spec.md §4.9).
type File struct {
	Version   string         `json:"version"`
	Metadata  metadata       `json:"metadata"`
	Canvas    struct {
		Cells []cellRecord `json:"cells"`
	} `json:"canvas"`
	Viewport  viewportRecord `json:"viewport"`
	Grid      gridRecord     `json:"grid"`
	Bookmarks map[string]cursorRecord `json:"bookmarks"`
	Zones     zonesRecord    `json:"zones"`
}

// State is the in-memory engine state Save/Load round-trip.
type State struct {
	Canvas    *canvas.Canvas
	View      *viewport.Viewport
	Grid      *grid.Settings
	Bookmarks *bookmark.Store
	Zones     *zone.Registry
	Name      string
	CreatedISO string
	ModifiedISO string
}

// Save serializes state to path as a JSON project file. Empty-glyph cells
// are skipped from the cell list.
func Save(path string, s State) error {
	var f File
	f.Version = FileVersion
	f.Metadata = metadata{Name: s.Name, CreatedISO: s.CreatedISO, ModifiedISO: s.ModifiedISO}

	s.Canvas.Each(func(p canvas.Point, cell canvas.Cell) {
		fg, bg := cell.FG, cell.BG
		rec := cellRecord{X: p.X, Y: p.Y, Char: string(cell.Char)}
		if fg != canvas.ColorDefault {
			rec.FG = &fg
		}
		if bg != canvas.ColorDefault {
			rec.BG = &bg
		}
		f.Canvas.Cells = append(f.Canvas.Cells, rec)
	})

	ydir := "down"
	if s.View.YDir == viewport.Up {
		ydir = "up"
	}
	f.Viewport = viewportRecord{
		X: s.View.OriginX, Y: s.View.OriginY,
		Cursor:     cursorRecord{X: s.View.CursorX, Y: s.View.CursorY},
		Origin:     cursorRecord{X: s.View.MarkerX, Y: s.View.MarkerY},
		YDirection: ydir,
	}

	lm := "off"
	switch s.Grid.LineModeVal {
	case grid.Markers:
		lm = "markers"
	case grid.Lines:
		lm = "lines"
	case grid.Dots:
		lm = "dots"
	}
	f.Grid = gridRecord{
		ShowOrigin:    s.Grid.ShowOrigin,
		MajorInterval: s.Grid.MajorInterval,
		MinorInterval: s.Grid.MinorInterval,
		LineMode:      lm,
		Rulers:        s.Grid.ShowRulers,
		Labels:        s.Grid.ShowLabels,
		LabelInterval: s.Grid.LabelInterval,
	}

	f.Bookmarks = make(map[string]cursorRecord)
	for k, p := range s.Bookmarks.Snapshot() {
		f.Bookmarks[k] = cursorRecord{X: p.X, Y: p.Y}
	}

	for _, z := range s.Zones.List() {
		f.Zones.Zones = append(f.Zones.Zones, descriptorFromZone(z))
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling project: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func descriptorFromZone(z *zone.Zone) ZoneDescriptor {
	d := ZoneDescriptor{Name: z.Name, X: z.X, Y: z.Y, W: z.W, H: z.H, Description: z.Description}
	if z.Bookmark != 0 {
		d.Bookmark = string(rune(z.Bookmark))
	}
	d.Type = z.Config.Type().String()
	switch cfg := z.Config.(type) {
	case zone.PipeConfig:
		d.Command, d.AutoScroll, d.MaxLines = cfg.Command, cfg.AutoScroll, cfg.MaxLines
	case zone.WatchConfig:
		d.Command, d.AutoScroll, d.MaxLines = cfg.Command, cfg.AutoScroll, cfg.MaxLines
		if cfg.WatchPath != "" {
			d.WatchPath = cfg.WatchPath
		} else {
			d.Interval = cfg.Interval.String()
		}
	case zone.PTYConfig:
		d.ShellCommand, d.MaxLines = cfg.ShellCommandLine, cfg.MaxLines
	case zone.FIFOConfig:
		d.Path, d.AutoScroll, d.MaxLines = cfg.Path, cfg.AutoScroll, cfg.MaxLines
	case zone.SocketConfig:
		d.Port, d.AutoScroll, d.MaxLines = cfg.Port, cfg.AutoScroll, cfg.MaxLines
	case zone.PagerConfig:
		d.FilePath, d.RendererHint = cfg.FilePath, cfg.RendererHint
	}
	return d
}

// Load reads a project file from path. Unknown JSON fields are ignored
// (forward compatibility); the caller (the command executor) applies the
// result to fresh engine state.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing project: %w", err)
	}
	return &f, nil
}

// ApplyCanvas writes every non-skipped cell from f into c.
func (f *File) ApplyCanvas(c *canvas.Canvas) {
	for _, rec := range f.Canvas.Cells {
		r := ' '
		for _, rr := range rec.Char {
			r = rr
			break
		}
		fg, bg := canvas.ColorDefault, canvas.ColorDefault
		if rec.FG != nil {
			fg = *rec.FG
		}
		if rec.BG != nil {
			bg = *rec.BG
		}
		c.Set(rec.X, rec.Y, canvas.Cell{Char: r, FG: fg, BG: bg})
	}
}

// ApplyViewport configures v from f's recorded viewport state.
func (f *File) ApplyViewport(v *viewport.Viewport) {
	v.YDir = viewport.Down
	if f.Viewport.YDirection == "up" {
		v.YDir = viewport.Up
	}
	v.SetOrigin(f.Viewport.X, f.Viewport.Y)
	v.MarkerX, v.MarkerY = f.Viewport.Origin.X, f.Viewport.Origin.Y
	v.SetCursor(f.Viewport.Cursor.X, f.Viewport.Cursor.Y)
}

// ApplyGrid configures s from f's recorded grid settings.
func (f *File) ApplyGrid(s *grid.Settings) {
	s.ShowOrigin = f.Grid.ShowOrigin
	s.MajorInterval = f.Grid.MajorInterval
	s.MinorInterval = f.Grid.MinorInterval
	s.ShowRulers = f.Grid.Rulers
	s.ShowLabels = f.Grid.Labels
	s.LabelInterval = f.Grid.LabelInterval
	switch f.Grid.LineMode {
	case "markers":
		s.LineModeVal = grid.Markers
	case "lines":
		s.LineModeVal = grid.Lines
	case "dots":
		s.LineModeVal = grid.Dots
	default:
		s.LineModeVal = grid.Off
	}
}

// ApplyBookmarks restores b from f's recorded bookmarks.
func (f *File) ApplyBookmarks(b *bookmark.Store) {
	snap := make(map[string]canvas.Point, len(f.Bookmarks))
	for k, c := range f.Bookmarks {
		snap[k] = canvas.Point{X: c.X, Y: c.Y}
	}
	b.Restore(snap)
}

// ExportText writes the canvas's non-empty bounding box to path as lines
// padded with spaces (spec.md §4.9 "Text export/import").
func ExportText(c *canvas.Canvas, path string) error {
	minX, minY, maxX, maxY, ok := c.Bounds()
	if !ok {
		return os.WriteFile(path, nil, 0644)
	}
	var sb strings.Builder
	for y := minY; y <= maxY; y++ {
		line := make([]rune, 0, maxX-minX+1)
		for x := minX; x <= maxX; x++ {
			cell := c.Get(x, y)
			if cell.Empty() {
				line = append(line, ' ')
			} else {
				line = append(line, cell.Char)
			}
		}
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// ImportText reads path and pastes its lines onto c with top-left at
// (atX,atY), one source line per canvas row.
func ImportText(c *canvas.Canvas, path string, atX, atY int64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	row := int64(0)
	for scanner.Scan() {
		line := scanner.Text()
		col := int64(0)
		for _, r := range line {
			c.Set(atX+col, atY+row, canvas.Cell{Char: r, FG: canvas.ColorDefault, BG: canvas.ColorDefault})
			col++
		}
		row++
	}
	if err := scanner.Err(); err != nil {
		return int(row), fmt.Errorf("reading %s: %w", path, err)
	}
	return int(row), nil
}
