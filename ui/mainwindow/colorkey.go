package mainwindow

import (
	"errors"
	goimage "image"
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"yarnboard/internal/app"
	"yarnboard/internal/board"
	"yarnboard/internal/export"
)

// defaultPalette cycles through when new keys are added.
var defaultPalette = []string{
	"#d23939", "#3978d2", "#39d274", "#d2c139", "#9a39d2", "#d27839",
}

// colorKeyPanel edits the board legend: one row per key with an activation
// radio, a name entry, and a swatch.
type colorKeyPanel struct {
	state     *app.State
	win       fyne.Window
	container *fyne.Container
	rows      *fyne.Container
}

func newColorKeyPanel(state *app.State, win fyne.Window) *colorKeyPanel {
	p := &colorKeyPanel{
		state: state,
		win:   win,
		rows:  container.NewVBox(),
	}

	addBtn := widget.NewButton("Add Key", func() {
		state.LockEngine()
		b := state.Board()
		c := defaultPalette[len(b.Keys())%len(defaultPalette)]
		b.AddColorKey("New key", c)
		state.UnlockEngine()
		state.SetModified(true)
		p.rebuild()
	})

	p.container = container.NewBorder(
		widget.NewLabelWithStyle("Color Key", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		addBtn,
		nil,
		nil,
		container.NewVScroll(p.rows),
	)
	p.rebuild()
	return p
}

// rebuild regenerates the rows from the board's key list.
func (p *colorKeyPanel) rebuild() {
	p.state.LockEngine()
	b := p.state.Board()
	keys := b.Keys()
	activeID := b.ActiveColorID
	p.state.UnlockEngine()

	p.rows.RemoveAll()
	for _, k := range keys {
		p.rows.Add(p.keyRow(b, k, activeID))
	}
	p.rows.Refresh()
}

func (p *colorKeyPanel) keyRow(b *board.Board, k board.ColorKey, activeID string) fyne.CanvasObject {
	active := widget.NewCheck("", func(on bool) {
		if on {
			p.state.LockEngine()
			b.SetActiveColor(k.ID)
			p.state.UnlockEngine()
			p.rebuild()
		}
	})
	active.SetChecked(k.ID == activeID)

	name := widget.NewEntry()
	name.SetText(k.Name)
	name.OnSubmitted = func(text string) {
		p.state.LockEngine()
		err := b.RenameColorKey(k.ID, text)
		p.state.UnlockEngine()
		if err == nil {
			p.state.SetModified(true)
		}
	}

	swatch := fynecanvas.NewImageFromImage(swatchImage(k.Color))
	swatch.SetMinSize(fyne.NewSize(22, 22))

	remove := widget.NewButton("x", func() {
		p.state.LockEngine()
		err := b.RemoveColorKey(k.ID)
		p.state.UnlockEngine()
		if err != nil {
			if errors.Is(err, board.ErrLastColorKey) {
				p.state.Emit(app.EventStatus, err.Error())
				return
			}
			dialog.ShowError(err, p.win)
			return
		}
		p.state.SetModified(true)
		p.rebuild()
	})

	return container.NewBorder(nil, nil, container.NewHBox(active, swatch), remove, name)
}

func swatchImage(hex string) goimage.Image {
	c, ok := export.ParseHexColor(hex)
	if !ok {
		c = color.RGBA{R: 0xd2, G: 0x39, B: 0x39, A: 0xff}
	}
	img := goimage.NewRGBA(goimage.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
