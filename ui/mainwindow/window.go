// Package mainwindow assembles the application window around the board
// canvas: toolbar, color key editor, status bar, menus, and file dialogs.
package mainwindow

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"yarnboard/internal/app"
	"yarnboard/internal/export"
	yimage "yarnboard/internal/image"
	"yarnboard/internal/version"
	"yarnboard/ui/boardcanvas"
	"yarnboard/ui/prefs"
)

const appTitle = "YarnBoard"

var boardExtensions = []string{".yb", ".ybb"}

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *boardcanvas.BoardWidget
	keyPanel  *colorKeyPanel
	statusBar *widget.Label
}

// New creates the main window over the given state and preferences.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	w := p.Float(prefs.KeyWindowWidth, 1280)
	h := p.Float(prefs.KeyWindowHeight, 840)
	win.Resize(fyne.NewSize(float32(w), float32(h)))

	return mw
}

func (mw *MainWindow) setupUI() {
	mw.canvas = boardcanvas.New(mw.state)
	mw.keyPanel = newColorKeyPanel(mw.state, mw.Window)
	mw.statusBar = widget.NewLabel("Ready")

	content := container.NewBorder(
		mw.createToolbar(),
		mw.statusBar,
		nil,
		mw.keyPanel.container,
		mw.canvas,
	)
	mw.SetContent(content)
}

// Start launches the frame loop and shows the window.
func (mw *MainWindow) Start() {
	mw.canvas.Start()
	mw.SetOnClosed(func() {
		mw.canvas.Stop()
		sz := mw.Canvas().Size()
		mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(sz.Width))
		mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(sz.Height))
		if err := mw.prefs.Save(); err != nil {
			mw.updateStatus("could not save preferences: " + err.Error())
		}
	})
	mw.Show()
}

func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("New Board", mw.onNewBoard),
		fyne.NewMenuItem("Open Board...", mw.onOpenBoard),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Import Images...", mw.onImportImages),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save Board", mw.onSaveBoard),
		fyne.NewMenuItem("Save Board As...", mw.onSaveBoardAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export PNG...", mw.onExportPNG),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { mw.app.Quit() }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.zoomBy(1.25) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.zoomBy(1/1.25) }),
		fyne.NewMenuItem("Actual Size", func() { mw.setZoom(1) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Toggle Legend", mw.onToggleLegend),
		fyne.NewMenuItem("Toggle Lock", mw.onToggleLock),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventBoardLoaded, func(data interface{}) {
		if path, ok := data.(string); ok && path != "" {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Board loaded: " + path)
		}
		mw.keyPanel.rebuild()
	})

	mw.state.On(app.EventBoardSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.SetTitle(appTitle + " - " + filepath.Base(path))
			mw.updateStatus("Board saved: " + path)
		}
	})

	mw.state.On(app.EventModified, func(data interface{}) {
		if modified, ok := data.(bool); ok && modified {
			title := mw.Title()
			if !strings.HasSuffix(title, "*") {
				mw.SetTitle(title + " *")
			}
		}
	})

	mw.state.On(app.EventStatus, func(data interface{}) {
		if msg, ok := data.(string); ok {
			mw.updateStatus(msg)
		}
	})
}

// setupKeys wires Escape to connect cancellation.
func (mw *MainWindow) setupKeys() {
	mw.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			mw.canvas.CancelConnect()
		}
	})
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) zoomBy(factor float64) {
	mw.state.LockEngine()
	zoom := mw.state.Board().Viewport.Zoom * factor
	mw.state.Board().SetZoom(zoom)
	mw.state.UnlockEngine()
	mw.canvas.Refresh()
}

func (mw *MainWindow) setZoom(zoom float64) {
	mw.state.LockEngine()
	mw.state.Board().SetZoom(zoom)
	mw.state.UnlockEngine()
	mw.canvas.Refresh()
}

func (mw *MainWindow) onNewBoard() {
	dialog.ShowConfirm("New Board", "Discard the current board?", func(ok bool) {
		if !ok {
			return
		}
		mw.state.NewBoard()
		mw.SetTitle(appTitle)
		mw.canvas.Refresh()
		mw.keyPanel.rebuild()
	}, mw.Window)
}

func (mw *MainWindow) onOpenBoard() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		if err := mw.state.Load(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastBoard, path)
		mw.canvas.Refresh()
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(boardExtensions))
	fd.Show()
}

func (mw *MainWindow) onSaveBoard() {
	if mw.state.BoardPath == "" {
		mw.onSaveBoardAs()
		return
	}
	if err := mw.state.Save(mw.state.BoardPath); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveBoardAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		if filepath.Ext(path) == "" {
			path += ".yb"
		}
		if err := mw.state.Save(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastBoard, path)
	}, mw.Window)
	fd.SetFileName("board.yb")
	fd.SetFilter(storage.NewExtensionFileFilter(boardExtensions))
	fd.Show()
}

func (mw *MainWindow) onImportImages() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		if !yimage.IsSupportedFormat(path) {
			reader.Close()
			mw.updateStatus("Unsupported image format: " + filepath.Base(path))
			return
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		data, readErr := io.ReadAll(reader)
		reader.Close()

		picked := app.PickedImage{Name: name, Path: path}
		if readErr == nil {
			picked.Data = data
		}
		mw.state.PlaceImages([]app.PickedImage{picked})
		mw.canvas.Refresh()
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(yimage.SupportedFormats()))
	fd.Show()
}

func (mw *MainWindow) onExportPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()
		scale := mw.prefs.Float(prefs.KeyExportScale, 1.0)
		mw.state.LockEngine()
		err = export.WritePNG(mw.state.Board(), path, scale)
		mw.state.UnlockEngine()
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + path)
	}, mw.Window)
	fd.SetFileName("board.png")
	fd.Show()
}

func (mw *MainWindow) onToggleLegend() {
	mw.state.LockEngine()
	b := mw.state.Board()
	b.ShowLegend = !b.ShowLegend
	mw.state.UnlockEngine()
	mw.canvas.Refresh()
}

func (mw *MainWindow) onToggleLock() {
	mw.state.LockEngine()
	b := mw.state.Board()
	b.Locked = !b.Locked
	locked := b.Locked
	mw.state.UnlockEngine()
	if locked {
		mw.updateStatus("Board locked")
	} else {
		mw.updateStatus("Board unlocked")
	}
	mw.canvas.Refresh()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About YarnBoard",
		fmt.Sprintf("YarnBoard %s\n\nA link chart with yarn.", version.String()),
		mw.Window)
}
