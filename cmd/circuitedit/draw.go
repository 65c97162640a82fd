package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/editor"
	"github.com/ha1tch/circuitsim/pkg/render"
	"github.com/ha1tch/circuitsim/pkg/sim"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleMenu       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleMenuSel    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleSidebar    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleSidebarH   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHigh       = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLow        = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAnalog     = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleSerial     = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgWarning = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray) // Help bar on default background
	styleInput      = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCanvas     = tcell.StyleDefault.Background(tcell.NewRGBColor(0x1c, 0x19, 0x17))
)

// Flash timing for status bar messages.
const (
	flashPhase  = 125 // ms
	flashPeriod = 500 // ms
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	ed.drawCanvas(w, h)
	ed.drawSidebar(w, h)

	switch ed.mode {
	case ModeSelectType:
		ed.drawTypeSelector(w, h)
	case ModeInput:
		ed.drawInputBox(w, h)
	case ModeHelp:
		ed.drawHelp(w, h)
	}

	ed.drawStatusBar(w, h)
}

func (ed *Editor) drawCanvas(w, h int) {
	canvasW, canvasH := ed.canvasSize()

	grid := render.Cells(ed.session.Scene(), canvasW, canvasH, cellW, cellH)
	for y := 0; y < canvasH; y++ {
		for x := 0; x < canvasW; x++ {
			c := grid.At(x, y)
			style := styleCanvas
			if c.Bg != "" {
				style = style.Background(termColor(c.Bg))
			}
			if c.Rune == 0 {
				ed.screen.SetContent(x, y, ' ', nil, style)
				continue
			}
			ed.screen.SetContent(x, y, c.Rune, nil, cellStyle(style, c))
		}
	}

	// Draw border
	for y := 0; y < canvasH; y++ {
		ed.screen.SetContent(canvasW, y, '│', nil, styleBorder)
	}

	if ed.session.Graph().IsEmpty() && ed.mode == ModeCanvas {
		hint := "Empty board. Press 'a' to add a component, '?' for help"
		ed.drawString((canvasW-len(hint))/2, canvasH/2, truncate(hint, canvasW), styleHelp)
	}
}

// cellStyle picks the terminal attributes for a projected cell.
func cellStyle(base tcell.Style, c render.Cell) tcell.Style {
	style := base
	if c.Color != "" {
		style = style.Foreground(termColor(c.Color))
	}
	switch c.Style {
	case render.StyleSelection, render.StylePinHover, render.StyleWireHover:
		style = style.Bold(true)
	case render.StylePinActive, render.StyleIndicatorOn:
		style = style.Bold(true).Blink(true)
	case render.StyleDeleteMarker:
		style = style.Foreground(tcell.ColorRed).Bold(true)
	case render.StyleLabel:
		style = style.Bold(true)
	}
	return style
}

// termColor converts "#rgb" or "#rrggbb" to a terminal colour.
func termColor(s string) tcell.Color {
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	return tcell.GetColor(s)
}

func (ed *Editor) drawSidebar(w, h int) {
	x := w - ed.sidebarWidth + 2
	y := 0
	width := ed.sidebarWidth - 4
	maxY := h - 2

	name := ed.session.Name()
	if name == "" {
		name = "Untitled"
	}
	g := ed.session.Graph()
	ed.drawString(x, y, truncate(name, width), styleSidebarH)
	y++
	ed.drawString(x, y, fmt.Sprintf("%d components, %d wires", g.Len(), g.WireCount()), styleSidebar)
	y += 2

	// Selected component
	if c, ok := g.Component(g.Selected()); ok {
		ed.drawString(x, y, "Selected:", styleSidebarH)
		y++
		ed.drawString(x, y, "  "+truncate(c.Spec().Label, width-2), styleSidebar)
		y++
		if c.Rotation != 0 {
			ed.drawString(x, y, fmt.Sprintf("  rotated %d°", c.Rotation), styleSidebar)
			y++
		}
		if s := stateSummary(c.State); s != "" {
			ed.drawString(x, y, "  "+truncate(s, width-2), styleSidebar)
			y++
		}
		y++
	}

	// Simulation
	panel := ed.session.Panels()
	ed.drawString(x, y, "Simulation:", styleSidebarH)
	y++
	status := "idle (press t to test)"
	style := styleLow
	switch panel.Status {
	case sim.StatusRunning:
		status, style = "running", styleHigh
	case sim.StatusError:
		status, style = "error", styleMsgError.Background(tcell.ColorDefault)
	}
	ed.drawString(x, y, "  "+status, style)
	y++
	for _, line := range wrap(panel.Message, width-2) {
		if y >= maxY {
			return
		}
		ed.drawString(x, y, "  "+line, styleSidebar)
		y++
	}
	y++

	// Pin monitor
	if len(panel.Pins) > 0 && y < maxY {
		ed.drawString(x, y, "Pins:", styleSidebarH)
		y++
		for _, p := range panel.Pins {
			if y >= maxY {
				return
			}
			level, ls := pinLevel(p)
			ed.drawString(x, y, fmt.Sprintf("  %-6s", truncate(p.Name, 6)), styleSidebar)
			ed.drawString(x+9, y, level, ls)
			y++
		}
		y++
	}

	// Serial monitor
	if len(panel.Serial) > 0 && y < maxY {
		ed.drawString(x, y, "Serial:", styleSidebarH)
		y++
		for _, line := range panel.Serial {
			if y >= maxY {
				return
			}
			ed.drawString(x, y, "  "+truncate(line, width-2), styleSerial)
			y++
		}
	}
}

func pinLevel(p render.PinRow) (string, tcell.Style) {
	switch p.Level {
	case sim.LevelHigh:
		return "HIGH", styleHigh
	case sim.LevelAnalog:
		return fmt.Sprintf("%d", p.Value), styleAnalog
	}
	return "LOW", styleLow
}

// stateSummary describes a component's adjustable state in one line.
func stateSummary(s circuit.State) string {
	switch s := s.(type) {
	case circuit.ButtonState:
		if s.IsPressed {
			return "pressed (space)"
		}
		return "released (space)"
	case circuit.BuzzerState:
		if s.IsActive {
			return "sounding (space)"
		}
		return "silent (space)"
	case circuit.ServoState:
		return fmt.Sprintf("angle %.0f° ([ ])", s.Angle)
	case circuit.UltrasonicState:
		return fmt.Sprintf("distance %.0f cm ([ ])", s.DistanceCM)
	case circuit.PotentiometerState:
		return fmt.Sprintf("%.0f Ω ([ ])", s.Resistance)
	case circuit.LCDState:
		if s.Line1 == "" && s.Line2 == "" {
			return ""
		}
		return strings.TrimSpace(s.Line1 + " / " + s.Line2)
	}
	return ""
}

// wrap splits s into lines of at most width runes on word boundaries.
func wrap(s string, width int) []string {
	if s == "" || width <= 0 {
		return nil
	}
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) <= width:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	for i, l := range lines {
		lines[i] = truncate(l, width)
	}
	return lines
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	// Background
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	// File info
	fileInfo := "[New]"
	if path := ed.session.Path(); path != "" {
		if len(path) > 30 {
			fileInfo = filepath.Base(path)
		} else {
			fileInfo = path
		}
	}
	if ed.session.Modified() {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	// Mode
	modeStr := ed.modeString()
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	// Message
	if ed.message != "" {
		style := messageStyle(ed.messageType)
		if shouldFlashForType(ed.messageType) && shouldBeInverted(time.Now().UnixMilli()-ed.messageFlashStart) {
			style = style.Reverse(true)
		}
		msg := truncate(ed.message, w/2-2)
		ed.drawString(w-len([]rune(msg))-2, y, msg, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, truncate(ed.helpString(), w-2), styleHelp)
}

func messageStyle(t editor.MessageType) tcell.Style {
	switch t {
	case editor.MsgError:
		return styleMsgError
	case editor.MsgSuccess:
		return styleMsgSuccess
	case editor.MsgWarning:
		return styleMsgWarning
	}
	return styleMsgInfo
}

// shouldBeInverted reports whether a flashing message is drawn reversed
// elapsed milliseconds after it was shown. Phases 1 and 3 are inverted.
func shouldBeInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= flashPeriod {
		return false
	}
	phase := elapsed / flashPhase
	return phase == 1 || phase == 3
}

// shouldFlashForType reports whether messages of type t flash.
func shouldFlashForType(t editor.MessageType) bool {
	switch t {
	case editor.MsgError, editor.MsgSuccess, editor.MsgWarning:
		return true
	}
	return false
}

func (ed *Editor) drawTypeSelector(w, h int) {
	types := circuit.Types()
	boxW := 34
	boxH := len(types) + 4
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2
	if boxY < 0 {
		boxY = 0
	}

	ed.drawBox(boxX, boxY, boxW, boxH, styleDefault)
	ed.drawString(boxX+2, boxY+1, "Add component:", styleSidebarH)

	for i, t := range types {
		style := styleMenu
		if i == ed.menuSelected {
			style = styleMenuSel
		}
		line := fmt.Sprintf(" %-28s", truncate(circuit.SpecFor(t).Label, 28))
		ed.drawString(boxX+2, boxY+3+i, line, style)
	}
}

func (ed *Editor) drawInputBox(w, h int) {
	boxW := 60
	if boxW > w-2 {
		boxW = w - 2
	}
	boxH := 3
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	// Draw box
	ed.drawBox(boxX, boxY, boxW, boxH, styleInput)

	// Draw prompt and input, keeping the end of long paths visible
	room := boxW - 5 - len(ed.inputPrompt)
	buf := []rune(ed.inputBuffer)
	if room > 0 && len(buf) > room {
		buf = buf[len(buf)-room:]
	}
	ed.drawString(boxX+2, boxY+1, ed.inputPrompt, styleInput)
	ed.drawString(boxX+2+len(ed.inputPrompt), boxY+1, string(buf)+"_", styleInput)
}

var helpLines = []string{
	"Mouse",
	"  click pin, click pin   draw a wire",
	"  drag component         move it",
	"  right-click wire       delete it",
	"  wheel                  pan (ctrl+wheel zooms)",
	"",
	"Keys",
	"  a        add component",
	"  r        rotate selected",
	"  Del      delete selected",
	"  space    press button / sound buzzer",
	"  [ ]      adjust servo, sensor, knob",
	"  t  x     test circuit / stop",
	"  + - 0 f  zoom in / out / reset / fit",
	"  arrows   pan",
	"  ^Z ^Y    undo / redo",
	"  ^S w     save / save as",
	"  ^O       open      ^N  clear board",
	"  p        export PNG or SVG",
	"  ^Q       quit",
}

func (ed *Editor) drawHelp(w, h int) {
	boxW := 48
	boxH := len(helpLines) + 4
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2
	if boxY < 0 {
		boxY = 0
	}
	ed.drawBox(boxX, boxY, boxW, boxH, styleDefault)
	ed.drawString(boxX+2, boxY+1, "Help (any key to close)", styleSidebarH)
	for i, line := range helpLines {
		style := styleMenu
		if line != "" && line[0] != ' ' {
			style = styleSidebarH
		}
		ed.drawString(boxX+2, boxY+3+i, line, style)
	}
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style) {
	// Corners
	ed.screen.SetContent(x, y, '┌', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y, '┐', nil, styleBorder)
	ed.screen.SetContent(x, y+h-1, '└', nil, styleBorder)
	ed.screen.SetContent(x+w-1, y+h-1, '┘', nil, styleBorder)

	// Horizontal borders
	for i := x + 1; i < x+w-1; i++ {
		ed.screen.SetContent(i, y, '─', nil, styleBorder)
		ed.screen.SetContent(i, y+h-1, '─', nil, styleBorder)
	}

	// Vertical borders
	for i := y + 1; i < y+h-1; i++ {
		ed.screen.SetContent(x, i, '│', nil, styleBorder)
		ed.screen.SetContent(x+w-1, i, '│', nil, styleBorder)
	}

	// Fill
	for row := y + 1; row < y+h-1; row++ {
		for col := x + 1; col < x+w-1; col++ {
			ed.screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		ed.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}

func (ed *Editor) modeString() string {
	switch ed.mode {
	case ModeSelectType:
		return "ADD COMPONENT"
	case ModeInput:
		return "INPUT"
	case ModeHelp:
		return "HELP"
	}
	zoom := fmt.Sprintf("%d%%", int(ed.session.Controller().View().Zoom*100+0.5))
	switch ed.session.Controller().Mode() {
	case editor.ModeDragging:
		return "MOVE " + zoom
	case editor.ModeDrawingWire:
		return "WIRE " + zoom
	case editor.ModePanning:
		return "PAN " + zoom
	}
	return zoom
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeSelectType:
		return "↑↓:Select  Enter:Place  Esc:Cancel"
	case ModeInput:
		return "Enter:Confirm  Esc:Cancel"
	case ModeHelp:
		return "Any key:Close"
	}
	if ed.session.Controller().Mode() == editor.ModeDrawingWire {
		return "Click a pin to finish the wire  Esc:Cancel"
	}
	return "a:Add  r:Rotate  Del:Delete  t:Test  x:Stop  ^S:Save  ^O:Open  ^Z/^Y:Undo/Redo  ?:Help  ^Q:Quit"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return ""
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
