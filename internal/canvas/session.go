package canvas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/meulenbelt/tendergraph/internal/client"
	"github.com/meulenbelt/tendergraph/internal/elements"
	"github.com/meulenbelt/tendergraph/internal/layout"
	"github.com/meulenbelt/tendergraph/internal/model"
	"github.com/meulenbelt/tendergraph/internal/status"
	"github.com/meulenbelt/tendergraph/internal/ui"
)

// Pan step per keypress, in world-scale screen units.
const panStep = 32

type sessionState int

const (
	stateLoading sessionState = iota
	stateError
	stateEmpty
	stateReady
)

type key int

const (
	keyNone key = iota
	keyQuit
	keyEscape
	keyUp
	keyDown
	keyLeft
	keyRight
	keyZoomIn
	keyZoomOut
	keyFit
	keyReset
	keyFullscreen
	keyLegend
	keyNext
	keyPrev
	keyToggle
	keyRefetch
)

type fetchResult struct {
	gen  int
	resp *model.GraphResponse
	err  error
}

type toggleResult struct {
	pending *status.Pending
	err     error
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(termAccent))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(termMuted))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(termYellow))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(termRed))
)

// Session drives the interactive terminal canvas: a raw-mode input
// reader, one event loop that owns all element and view mutation, and
// async fetch/persist goroutines that report back through channels.
// Re-layout happens only when a (re)fetch succeeds; pan, zoom, resize,
// and toggles touch view state or one element's style in place.
type Session struct {
	client  client.GraphClient
	project string
	logger  *slog.Logger

	in  io.Reader
	out io.Writer

	engine *layout.Engine
	vp     *Viewport
	cols   int
	rows   int
	color  bool

	state    sessionState
	loadErr  error
	set      *elements.Set
	diagram  *layout.Diagram
	syncer   *status.Syncer
	selected int // index into diagram.Items, -1 when nothing is selected
	legend   bool
	chrome   bool
	notice   string

	gen     int
	fetches chan fetchResult
	toggles chan toggleResult
}

// NewSession prepares an interactive view of one project's graph.
func NewSession(c client.GraphClient, project string, params layout.Params, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client:   c,
		project:  project,
		logger:   logger,
		in:       os.Stdin,
		out:      os.Stdout,
		engine:   layout.New(params),
		vp:       NewViewport(0, 0),
		cols:     80,
		rows:     24,
		color:    ui.ShouldUseColor(),
		state:    stateLoading,
		selected: -1,
		legend:   true,
		chrome:   true,
		fetches:  make(chan fetchResult, 1),
		toggles:  make(chan toggleResult, 4),
	}
}

// Run enters the alternate screen, switches the terminal to raw mode,
// and serves the event loop until the user quits or ctx is canceled.
// Fetches are canceled with the session, so a response arriving after
// teardown is never applied to the view.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		old, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return fmt.Errorf("entering raw mode: %w", err)
		}
		defer term.Restore(int(f.Fd()), old)
	}
	fmt.Fprint(s.out, "\x1b[?1049h\x1b[?25l")
	defer fmt.Fprint(s.out, "\x1b[?25h\x1b[?1049l")

	keys := make(chan key, 8)
	go s.readKeys(ctx, keys)

	s.startFetch(ctx)
	s.render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case k := <-keys:
			if s.handleKey(ctx, k) {
				return nil
			}
			s.render()
		case res := <-s.fetches:
			s.applyFetch(res)
			s.render()
		case res := <-s.toggles:
			s.applyToggle(res)
			s.render()
		}
	}
}

func (s *Session) readKeys(ctx context.Context, keys chan<- key) {
	buf := make([]byte, 64)
	for {
		n, err := s.in.Read(buf)
		if err != nil {
			return
		}
		b := buf[:n]
		for len(b) > 0 {
			k, used := decodeKey(b)
			b = b[used:]
			if k == keyNone {
				continue
			}
			select {
			case keys <- k:
			case <-ctx.Done():
				return
			}
		}
	}
}

// decodeKey consumes one key from b, returning the decoded key and the
// number of bytes used. Unknown bytes decode to keyNone one at a time.
func decodeKey(b []byte) (key, int) {
	if len(b) == 0 {
		return keyNone, 0
	}
	if b[0] == 0x1b {
		if len(b) >= 3 && b[1] == '[' {
			switch b[2] {
			case 'A':
				return keyUp, 3
			case 'B':
				return keyDown, 3
			case 'C':
				return keyRight, 3
			case 'D':
				return keyLeft, 3
			case 'Z':
				return keyPrev, 3
			}
			return keyNone, 3
		}
		return keyEscape, 1
	}
	switch b[0] {
	case 'q', 0x03:
		return keyQuit, 1
	case 'k':
		return keyUp, 1
	case 'j':
		return keyDown, 1
	case 'h':
		return keyLeft, 1
	case 'l':
		return keyRight, 1
	case '+', '=':
		return keyZoomIn, 1
	case '-', '_':
		return keyZoomOut, 1
	case 'f':
		return keyFit, 1
	case 'F':
		return keyFullscreen, 1
	case 'r', '0':
		return keyReset, 1
	case 'L':
		return keyLegend, 1
	case '\t', 'n':
		return keyNext, 1
	case 'p':
		return keyPrev, 1
	case ' ', '\r':
		return keyToggle, 1
	case 'g':
		return keyRefetch, 1
	}
	return keyNone, 1
}

// handleKey applies one key to the session and reports whether to exit.
func (s *Session) handleKey(ctx context.Context, k key) bool {
	s.notice = ""
	switch k {
	case keyQuit:
		return true
	case keyEscape:
		s.selected = -1
		return false
	case keyRefetch:
		if s.state != stateLoading {
			s.state = stateLoading
			s.startFetch(ctx)
		}
		return false
	}
	if s.state != stateReady {
		return false
	}
	switch k {
	case keyUp:
		s.vp.Pan(0, panStep)
	case keyDown:
		s.vp.Pan(0, -panStep)
	case keyLeft:
		s.vp.Pan(panStep, 0)
	case keyRight:
		s.vp.Pan(-panStep, 0)
	case keyZoomIn:
		s.vp.ZoomIn()
	case keyZoomOut:
		s.vp.ZoomOut()
	case keyFit, keyReset:
		s.vp.Reset(s.diagram.Width, s.diagram.Height)
	case keyFullscreen:
		s.chrome = !s.chrome
		s.fitViewport()
	case keyLegend:
		s.legend = !s.legend
	case keyNext:
		s.selectStep(1)
	case keyPrev:
		s.selectStep(-1)
	case keyToggle:
		s.startToggle(ctx)
	}
	return false
}

func (s *Session) selectStep(delta int) {
	n := len(s.diagram.Items)
	if n == 0 {
		return
	}
	s.selected = ((s.selected+delta)%n + n) % n
}

func (s *Session) startFetch(ctx context.Context) {
	s.gen++
	gen := s.gen
	go func() {
		resp, err := s.client.FetchGraph(ctx, s.project)
		select {
		case s.fetches <- fetchResult{gen: gen, resp: resp, err: err}:
		case <-ctx.Done():
		}
	}()
}

// applyFetch installs a fetch result. Results from superseded requests
// are discarded so a reload is never overwritten by a stale response.
// This is the only place a layout is computed.
func (s *Session) applyFetch(res fetchResult) {
	if res.gen != s.gen {
		return
	}
	if res.err != nil {
		s.state = stateError
		s.loadErr = res.err
		s.logger.Error("graph fetch failed", "project", s.project, "err", res.err)
		return
	}
	if len(res.resp.Nodes) == 0 {
		s.state = stateEmpty
		return
	}
	s.set = elements.Build(res.resp.Nodes, res.resp.Edges)
	s.diagram = s.engine.Layout(s.set)
	s.syncer = status.New(s.client, s.project, s.set, s.logger)
	s.selected = -1
	s.state = stateReady
	s.fitViewport()
}

// startToggle begins the optimistic toggle on the loop and hands only
// the network persist to a goroutine.
func (s *Session) startToggle(ctx context.Context) {
	sel := s.selectedItem()
	if sel == nil {
		s.notice = "select a node first (tab)"
		return
	}
	p, err := s.syncer.Begin(sel.Item.ID)
	if err != nil {
		if errors.Is(err, status.ErrToggleInFlight) {
			s.notice = "toggle already in flight for " + sel.Item.ID
		} else {
			s.notice = err.Error()
		}
		return
	}
	if p == nil {
		s.notice = fmt.Sprintf("%s is %s; only completed and not_started toggle", sel.Item.ID, sel.Item.Status)
		return
	}
	go func() {
		err := p.Persist(ctx)
		select {
		case s.toggles <- toggleResult{pending: p, err: err}:
		case <-ctx.Done():
		}
	}()
}

// applyToggle reconciles a finished persist: commit on success, revert
// plus a transient notice on failure.
func (s *Session) applyToggle(res toggleResult) {
	if res.err != nil {
		prev := res.pending.Revert()
		s.notice = fmt.Sprintf("toggle failed, %s back to %s: %v", res.pending.NodeID, prev, res.err)
		s.logger.Error("status persist failed", "node", res.pending.NodeID, "err", res.err)
		return
	}
	res.pending.Commit()
	s.notice = fmt.Sprintf("%s set to %s", res.pending.NodeID, res.pending.Next)
}

func (s *Session) selectedItem() *layout.PositionedItem {
	if s.state != stateReady || s.selected < 0 || s.selected >= len(s.diagram.Items) {
		return nil
	}
	return s.diagram.Items[s.selected]
}

// resize queries the terminal size and refits the view when it changed.
func (s *Session) resize() {
	cols, rows := s.cols, s.rows
	if f, ok := s.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if c, r, err := term.GetSize(int(f.Fd())); err == nil {
			cols, rows = c, r
		}
	}
	if cols == s.cols && rows == s.rows && s.vp.Width > 0 {
		return
	}
	s.cols, s.rows = cols, rows
	s.fitViewport()
}

func (s *Session) fitViewport() {
	rows := s.canvasRows()
	s.vp.SetSize(float64(s.cols*cellPxX), float64(rows*cellPxY))
	if s.state == stateReady {
		s.vp.Fit(s.diagram.Width, s.diagram.Height)
	}
}

func (s *Session) canvasRows() int {
	rows := s.rows
	if s.chrome {
		rows -= 2
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (s *Session) render() {
	s.resize()
	var b strings.Builder
	b.WriteString("\x1b[H")
	for i, line := range s.frame() {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(line)
		b.WriteString("\x1b[K")
	}
	b.WriteString("\x1b[J")
	fmt.Fprint(s.out, b.String())
}

// frame builds the full screen as one line per terminal row.
func (s *Session) frame() []string {
	canvasRows := s.canvasRows()
	var body []string
	switch s.state {
	case stateLoading:
		body = s.messageLines(canvasRows,
			"fetching graph for "+s.project+" ...")
	case stateError:
		body = s.messageLines(canvasRows,
			s.styled(errorStyle, "fetch failed: "+s.loadErr.Error()),
			"",
			s.styled(mutedStyle, "g retry | q quit"))
	case stateEmpty:
		body = s.messageLines(canvasRows,
			"no nodes in project "+s.project,
			"",
			s.styled(mutedStyle, "g refresh | q quit"))
	case stateReady:
		r := NewTermRenderer(s.vp, s.cols, canvasRows, s.color)
		if sel := s.selectedItem(); sel != nil {
			r.Selected = sel.Item.ID
		}
		Draw(r, s.diagram)
		if s.legend {
			r.Legend()
		}
		body = r.Lines()
	}
	if !s.chrome {
		return body
	}
	lines := make([]string, 0, len(body)+2)
	lines = append(lines, s.headerLine())
	lines = append(lines, body...)
	lines = append(lines, s.footerLine())
	return lines
}

func (s *Session) messageLines(rows int, msg ...string) []string {
	lines := make([]string, rows)
	start := rows/2 - len(msg)/2
	if start < 0 {
		start = 0
	}
	for i, m := range msg {
		if start+i >= rows {
			break
		}
		pad := (s.cols - lipgloss.Width(m)) / 2
		if pad < 0 {
			pad = 0
		}
		lines[start+i] = strings.Repeat(" ", pad) + m
	}
	return lines
}

func (s *Session) headerLine() string {
	title := s.styled(headerStyle, "tendergraph | "+s.project)
	var info string
	if s.state == stateReady {
		info = fmt.Sprintf("%d nodes, %d edges, zoom %.0f%%",
			len(s.diagram.Items), len(s.diagram.Edges), s.vp.Zoom*100)
		if sel := s.selectedItem(); sel != nil {
			info = sel.Item.ID + " | " + info
		}
		info = s.styled(mutedStyle, info)
	}
	gap := s.cols - lipgloss.Width(title) - lipgloss.Width(info)
	if gap < 1 {
		return title
	}
	return title + strings.Repeat(" ", gap) + info
}

func (s *Session) footerLine() string {
	if s.notice != "" {
		return s.styled(noticeStyle, s.notice)
	}
	return s.styled(mutedStyle,
		"arrows pan  +/- zoom  f fit  tab select  enter toggle  g reload  q quit")
}

func (s *Session) styled(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}
