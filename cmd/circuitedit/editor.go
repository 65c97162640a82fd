package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/ha1tch/circuitsim/pkg/circuit"
	"github.com/ha1tch/circuitsim/pkg/editor"
	"github.com/ha1tch/circuitsim/pkg/render"
)

// Mode is the editor's screen mode. Pointer gestures on the canvas are
// tracked separately by the session's controller.
type Mode int

const (
	ModeCanvas Mode = iota
	ModeSelectType
	ModeInput
	ModeHelp
)

// Canvas geometry in scene units per terminal cell.
const (
	cellW     = render.DefaultCellW
	cellH     = render.DefaultCellH
	panStep   = 4 // cells per arrow key
	wheelPan  = 3 // cells per wheel notch
	saveQuiet = 2 * time.Second
)

// Editor holds all editor state
type Editor struct {
	screen  tcell.Screen
	session *editor.Session
	config  Config
	logger  *zap.Logger
	watcher *fileWatcher

	mode              Mode
	message           string
	messageType       editor.MessageType
	messageFlashStart int64

	menuSelected int
	inputPrompt  string
	inputBuffer  string
	inputAction  func(string)

	prevButtons  tcell.ButtonMask
	sidebarWidth int
}

func newEditor(cfg Config, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		config:       cfg,
		logger:       logger,
		sidebarWidth: 34,
	}
}

func (ed *Editor) run() {
	done := make(chan struct{})
	defer close(done)
	go ed.tick(done, 50*time.Millisecond)

	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			if fc, ok := ev.Data().(fileChanged); ok {
				ed.logger.Info("file changed on disk", zap.String("path", fc.path))
				ed.showMessage("File changed on disk, reloading", editor.MsgInfo)
				ed.session.Import(fc.path)
				continue
			}
			if ed.session.Tick(time.Now()) {
				ed.watchCurrent()
			}
		}
	}
}

// tick posts an interrupt every interval until done is closed. The interrupts
// drive history, auto-save, imports and the message flash.
func (ed *Editor) tick(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			// A full queue drops this tick; the next one will try again.
			_ = ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}
	}
}

func (ed *Editor) showMessage(msg string, msgType editor.MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart = time.Now().UnixMilli()
	// Trigger immediate refresh for flash animation
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// canvasSize returns the canvas area in cells.
func (ed *Editor) canvasSize() (int, int) {
	w, h := ed.screen.Size()
	cw := w - ed.sidebarWidth
	if cw < 1 {
		cw = 1
	}
	ch := h - 2
	if ch < 1 {
		ch = 1
	}
	return cw, ch
}

// cellPoint returns the scene position at the centre of a terminal cell.
func cellPoint(x, y int) (float64, float64) {
	return (float64(x) + 0.5) * cellW, (float64(y) + 0.5) * cellH
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlQ:
		return true
	}

	switch ed.mode {
	case ModeSelectType:
		ed.handleSelectTypeKey(ev)
		return false
	case ModeInput:
		ed.handleInputKey(ev)
		return false
	case ModeHelp:
		ed.mode = ModeCanvas
		return false
	}
	return ed.handleCanvasKey(ev)
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	ctrl := ed.session.Controller()

	switch ev.Key() {
	case tcell.KeyCtrlZ:
		ctrl.Key(editor.KeyEvent{Key: editor.KeyRune, Rune: 'z', Mods: editor.ModCtrl})
		return false
	case tcell.KeyCtrlY:
		ctrl.Key(editor.KeyEvent{Key: editor.KeyRune, Rune: 'y', Mods: editor.ModCtrl})
		return false
	case tcell.KeyCtrlS:
		ed.save()
		return false
	case tcell.KeyCtrlO:
		ed.promptOpen()
		return false
	case tcell.KeyCtrlN:
		ed.session.Clear()
		return false
	case tcell.KeyEscape:
		ctrl.Key(editor.KeyEvent{Key: editor.KeyEscape})
		return false
	case tcell.KeyDelete:
		ctrl.Key(editor.KeyEvent{Key: editor.KeyDelete})
		return false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		ctrl.Key(editor.KeyEvent{Key: editor.KeyBackspace})
		return false
	case tcell.KeyUp:
		ed.panViewport(0, panStep)
		return false
	case tcell.KeyDown:
		ed.panViewport(0, -panStep)
		return false
	case tcell.KeyLeft:
		ed.panViewport(panStep, 0)
		return false
	case tcell.KeyRight:
		ed.panViewport(-panStep, 0)
		return false
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'a':
		ed.mode = ModeSelectType
		ed.menuSelected = 0
	case 't':
		ed.session.Evaluate()
	case 'x':
		ed.session.StopSimulation()
		ed.showMessage("Simulation stopped", editor.MsgInfo)
	case '+', '=':
		ctrl.ZoomIn()
	case '-':
		ctrl.ZoomOut()
	case '0':
		ctrl.ResetZoom()
	case 'f':
		ed.fitView()
	case 'p':
		ed.promptExportImage()
	case 'w':
		ed.promptSaveAs()
	case '?':
		ed.mode = ModeHelp
	default:
		ctrl.Key(editor.KeyEvent{Key: editor.KeyRune, Rune: ev.Rune()})
	}
	return false
}

func (ed *Editor) handleSelectTypeKey(ev *tcell.EventKey) {
	types := circuit.Types()
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyUp:
		if ed.menuSelected > 0 {
			ed.menuSelected--
		}
	case tcell.KeyDown:
		if ed.menuSelected < len(types)-1 {
			ed.menuSelected++
		}
	case tcell.KeyEnter:
		ed.addComponent(types[ed.menuSelected])
		ed.mode = ModeCanvas
	}
}

func (ed *Editor) handleInputKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.mode = ModeCanvas
	case tcell.KeyEnter:
		ed.mode = ModeCanvas
		input := strings.TrimSpace(ed.inputBuffer)
		if input != "" && ed.inputAction != nil {
			ed.inputAction(input)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(ed.inputBuffer) > 0 {
			r := []rune(ed.inputBuffer)
			ed.inputBuffer = string(r[:len(r)-1])
		}
	case tcell.KeyRune:
		ed.inputBuffer += string(ev.Rune())
	}
}

func (ed *Editor) prompt(label, initial string, action func(string)) {
	ed.mode = ModeInput
	ed.inputPrompt = label
	ed.inputBuffer = initial
	ed.inputAction = action
}

// addComponent places a component in the middle of the visible canvas.
func (ed *Editor) addComponent(t circuit.ComponentType) {
	cw, ch := ed.canvasSize()
	spec := circuit.SpecFor(t)
	x, y := cellPoint(cw/2, ch/2)
	z := ed.session.Controller().View().Zoom
	pos := circuit.Point{X: x - spec.Width*z/2, Y: y - spec.Height*z/2}
	ed.session.AddComponent(t, pos)
	ed.showMessage("Added "+spec.Label, editor.MsgSuccess)
}

func (ed *Editor) panViewport(dx, dy int) {
	ctrl := ed.session.Controller()
	v := ctrl.View()
	v.PanX += float64(dx) * cellW
	v.PanY += float64(dy) * cellH
	ctrl.SetView(v)
}

func (ed *Editor) fitView() {
	cw, ch := ed.canvasSize()
	ed.session.Controller().SetView(render.FitView(ed.session.Graph(), float64(cw)*cellW, float64(ch)*cellH, 2*cellW))
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	cw, _ := ed.canvasSize()

	if ed.mode != ModeCanvas {
		ed.prevButtons = buttons & pointerButtons
		return
	}

	ctrl := ed.session.Controller()
	px, py := cellPoint(x, y)
	mods := translateMods(ev.Modifiers())

	if buttons&(tcell.WheelUp|tcell.WheelDown) != 0 {
		delta := 1.0
		if buttons&tcell.WheelDown != 0 {
			delta = -1
		}
		if !ctrl.Wheel(editor.WheelEvent{X: px, Y: py, Delta: delta, Mods: mods}) {
			ed.panViewport(0, int(delta)*wheelPan)
		}
		return
	}

	// Presses on the sidebar are ignored.
	if x >= cw && ed.prevButtons == 0 {
		ed.prevButtons = buttons & pointerButtons
		return
	}

	for _, act := range pointerActions(ed.prevButtons, buttons, px, py, mods) {
		switch act.kind {
		case actDown:
			ctrl.PointerDown(act.ev)
		case actMove:
			ctrl.PointerMove(act.ev)
		case actUp:
			ctrl.PointerUp(act.ev)
		}
	}
	ed.prevButtons = buttons & pointerButtons
}

const pointerButtons = tcell.Button1 | tcell.Button2 | tcell.Button3

type actionKind int

const (
	actDown actionKind = iota
	actMove
	actUp
)

type pointerAction struct {
	kind actionKind
	ev   editor.PointerEvent
}

// pointerActions turns tcell's button-state reports into press, move and
// release events. tcell reports which buttons are held, not transitions.
func pointerActions(prev, now tcell.ButtonMask, x, y float64, mods editor.Mods) []pointerAction {
	now &= pointerButtons
	pressed := now &^ prev
	released := prev &^ now

	var out []pointerAction
	for _, b := range []tcell.ButtonMask{tcell.Button1, tcell.Button3, tcell.Button2} {
		if released&b != 0 {
			out = append(out, pointerAction{actUp, editor.PointerEvent{X: x, Y: y, Button: translateButton(b), Mods: mods}})
		}
	}
	for _, b := range []tcell.ButtonMask{tcell.Button1, tcell.Button3, tcell.Button2} {
		if pressed&b != 0 {
			out = append(out, pointerAction{actDown, editor.PointerEvent{X: x, Y: y, Button: translateButton(b), Mods: mods}})
		}
	}
	if len(out) == 0 {
		out = append(out, pointerAction{actMove, editor.PointerEvent{X: x, Y: y, Mods: mods}})
	}
	return out
}

func translateButton(b tcell.ButtonMask) editor.Button {
	switch b {
	case tcell.Button1:
		return editor.ButtonLeft
	case tcell.Button2:
		return editor.ButtonRight
	case tcell.Button3:
		return editor.ButtonMiddle
	}
	return editor.ButtonNone
}

func translateMods(m tcell.ModMask) editor.Mods {
	var out editor.Mods
	if m&(tcell.ModCtrl|tcell.ModMeta) != 0 {
		out |= editor.ModCtrl
	}
	if m&tcell.ModShift != 0 {
		out |= editor.ModShift
	}
	if m&tcell.ModAlt != 0 {
		out |= editor.ModAlt
	}
	return out
}

// File operations

func (ed *Editor) save() {
	if ed.session.Path() == "" {
		ed.promptSaveAs()
		return
	}
	ed.saveFile(ed.session.Path())
}

func (ed *Editor) promptSaveAs() {
	initial := ed.session.Path()
	if initial == "" {
		initial = filepath.Join(ed.config.LastDir, "circuit.json")
	}
	ed.prompt("Save as: ", initial, ed.saveFile)
}

func (ed *Editor) saveFile(path string) {
	if ed.watcher != nil {
		ed.watcher.IgnoreFor(saveQuiet)
	}
	if err := ed.session.Export(path); err != nil {
		ed.showMessage(fmt.Sprintf("Save failed: %v", err), editor.MsgError)
		return
	}
	ed.config.LastDir = filepath.Dir(path)
	ed.watchCurrent()
	ed.showMessage("Saved "+path, editor.MsgSuccess)
}

func (ed *Editor) promptOpen() {
	ed.prompt("Open: ", ed.config.LastDir+string(os.PathSeparator), func(path string) {
		ed.config.LastDir = filepath.Dir(path)
		ed.showMessage("Loading "+path, editor.MsgInfo)
		ed.session.Import(path)
	})
}

func (ed *Editor) promptExportImage() {
	name := ed.session.Name()
	if name == "" {
		name = "circuit"
	}
	ed.prompt("Export image: ", filepath.Join(ed.config.LastDir, name+".png"), ed.exportImage)
}

func (ed *Editor) exportImage(path string) {
	g := ed.session.Graph()
	view := render.FitView(g, 1000, 700, 40)
	scene := render.Render(g, ed.session.Result(), view, render.Interaction{})

	f, err := os.Create(path)
	if err != nil {
		ed.showMessage(fmt.Sprintf("Export failed: %v", err), editor.MsgError)
		return
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		opts := render.DefaultSVGOptions()
		opts.Title = ed.session.Name()
		err = render.WriteSVG(f, scene, opts)
	default:
		err = render.WritePNG(f, scene, render.DefaultPNGOptions())
	}
	if err != nil {
		ed.showMessage(fmt.Sprintf("Export failed: %v", err), editor.MsgError)
		return
	}
	ed.showMessage("Exported "+path, editor.MsgSuccess)
}

// watchCurrent points the file watcher at the session's file.
func (ed *Editor) watchCurrent() {
	if ed.watcher == nil {
		return
	}
	if err := ed.watcher.Watch(ed.session.Path()); err != nil {
		ed.logger.Warn("cannot watch file", zap.String("path", ed.session.Path()), zap.Error(err))
	}
}
