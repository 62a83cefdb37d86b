package mainwindow

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"yarnboard/internal/app"
	yimage "yarnboard/internal/image"
	"yarnboard/internal/interact"
)

func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	modes := widget.NewRadioGroup([]string{"select", "connect", "delete"}, func(sel string) {
		switch sel {
		case "connect":
			mw.state.SetMode(interact.ModeConnect)
		case "delete":
			mw.state.SetMode(interact.ModeDelete)
		default:
			mw.state.SetMode(interact.ModeSelect)
		}
	})
	modes.Horizontal = true
	modes.SetSelected("select")

	// keep the radio in sync when the mode changes elsewhere
	mw.state.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(interact.Mode); ok {
			modes.SetSelected(m.String())
		}
	})

	zoom := widget.NewSlider(0.25, 2.0)
	zoom.Step = 0.05
	zoom.Value = 1.0
	zoom.OnChanged = func(v float64) {
		mw.setZoom(v)
	}

	lock := widget.NewCheck("Lock", func(on bool) {
		mw.state.LockEngine()
		mw.state.Board().Locked = on
		mw.state.UnlockEngine()
		mw.canvas.Refresh()
	})

	legend := widget.NewCheck("Legend", func(on bool) {
		mw.state.LockEngine()
		mw.state.Board().ShowLegend = on
		mw.state.UnlockEngine()
		mw.canvas.Refresh()
	})

	render := widget.NewSelect([]string{"optimized", "high"}, func(sel string) {
		mw.state.LockEngine()
		mw.state.Board().RenderMode = yimage.ParseMode(sel)
		mw.state.UnlockEngine()
		mw.canvas.Refresh()
	})
	render.SetSelected("optimized")

	importBtn := widget.NewButton("Import", mw.onImportImages)
	exportBtn := widget.NewButton("Export PNG", mw.onExportPNG)

	mw.state.On(app.EventBoardLoaded, func(interface{}) {
		mw.state.LockEngine()
		b := mw.state.Board()
		z := b.Viewport.Zoom
		locked := b.Locked
		showLegend := b.ShowLegend
		mode := b.RenderMode.String()
		mw.state.UnlockEngine()
		zoom.SetValue(z)
		lock.SetChecked(locked)
		legend.SetChecked(showLegend)
		render.SetSelected(mode)
	})

	return container.NewHBox(
		modes,
		widget.NewSeparator(),
		widget.NewLabel("Zoom"),
		container.NewGridWrap(fyne.NewSize(160, 36), zoom),
		widget.NewSeparator(),
		lock,
		legend,
		render,
		widget.NewSeparator(),
		importBtn,
		exportBtn,
	)
}
