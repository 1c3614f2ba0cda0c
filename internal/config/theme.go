package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/meulenbelt/tendergraph/internal/layout"
	"github.com/meulenbelt/tendergraph/internal/model"
)

// Theme holds renderer overrides loaded from a TOML file. Every field is
// optional; zero values keep the built-in default.
//
//	[layout]
//	node_width = 180
//	rank_gap_y = 90
//
//	[fills]
//	requirement = "#fffbe6"
//
//	[strokes]
//	requirement = "#946800"
type Theme struct {
	Layout  ThemeLayout       `toml:"layout"`
	Fills   map[string]string `toml:"fills"`
	Strokes map[string]string `toml:"strokes"`
}

// ThemeLayout mirrors layout.Params with TOML names.
type ThemeLayout struct {
	NodeWidth      float64 `toml:"node_width"`
	NodeHeight     float64 `toml:"node_height"`
	NodeGapX       float64 `toml:"node_gap_x"`
	RankGapY       float64 `toml:"rank_gap_y"`
	GroupPadding   float64 `toml:"group_padding"`
	HeaderOffset   float64 `toml:"header_offset"`
	GroupGapX      float64 `toml:"group_gap_x"`
	GroupGapY      float64 `toml:"group_gap_y"`
	OrphanColumns  int     `toml:"orphan_columns"`
	OrphanPitchX   float64 `toml:"orphan_pitch_x"`
	OrphanPitchY   float64 `toml:"orphan_pitch_y"`
	CrossingSweeps int     `toml:"crossing_sweeps"`
}

// LoadTheme reads a theme file. An empty path yields an empty theme, so
// callers can apply it unconditionally.
func LoadTheme(path string) (*Theme, error) {
	t := &Theme{}
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme: %w", err)
	}
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parsing theme %s: %w", path, err)
	}
	for name := range t.Fills {
		if !model.NodeType(name).IsValid() {
			return nil, fmt.Errorf("theme %s: unknown node type %q in [fills]", path, name)
		}
	}
	for name := range t.Strokes {
		if !model.NodeType(name).IsValid() {
			return nil, fmt.Errorf("theme %s: unknown node type %q in [strokes]", path, name)
		}
	}
	return t, nil
}

// Params merges the theme's layout overrides over the default geometry.
func (t *Theme) Params() layout.Params {
	p := layout.DefaultParams()
	l := t.Layout
	if l.NodeWidth > 0 {
		p.NodeWidth = l.NodeWidth
	}
	if l.NodeHeight > 0 {
		p.NodeHeight = l.NodeHeight
	}
	if l.NodeGapX > 0 {
		p.NodeGapX = l.NodeGapX
	}
	if l.RankGapY > 0 {
		p.RankGapY = l.RankGapY
	}
	if l.GroupPadding > 0 {
		p.GroupPadding = l.GroupPadding
	}
	if l.HeaderOffset > 0 {
		p.HeaderOffset = l.HeaderOffset
	}
	if l.GroupGapX > 0 {
		p.GroupGapX = l.GroupGapX
	}
	if l.GroupGapY > 0 {
		p.GroupGapY = l.GroupGapY
	}
	if l.OrphanColumns > 0 {
		p.OrphanColumns = l.OrphanColumns
	}
	if l.OrphanPitchX > 0 {
		p.OrphanPitchX = l.OrphanPitchX
	}
	if l.OrphanPitchY > 0 {
		p.OrphanPitchY = l.OrphanPitchY
	}
	if l.CrossingSweeps > 0 {
		p.CrossingSweeps = l.CrossingSweeps
	}
	return p
}

// NodeStyles returns the palette overrides as typed maps for
// elements.OverrideStyles. Both maps may be empty.
func (t *Theme) NodeStyles() (fills, strokes map[model.NodeType]string) {
	fills = make(map[model.NodeType]string, len(t.Fills))
	for name, c := range t.Fills {
		fills[model.NodeType(name)] = c
	}
	strokes = make(map[model.NodeType]string, len(t.Strokes))
	for name, c := range t.Strokes {
		strokes[model.NodeType(name)] = c
	}
	return fills, strokes
}
