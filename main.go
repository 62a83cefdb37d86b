// Package main provides the entry point for the YarnBoard application.
package main

import (
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/dialog"

	"yarnboard/internal/app"
	"yarnboard/internal/store"
	"yarnboard/internal/version"
	"yarnboard/ui/mainwindow"
	"yarnboard/ui/prefs"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting YarnBoard v%s", version.String())

	fyneApp := fyneapp.NewWithID("io.yarnboard")
	appPrefs := prefs.Load()

	cache, err := store.NewFileStore(store.DefaultDir())
	var autosave store.Store
	if err != nil {
		log.Printf("autosave cache unavailable, using memory: %v", err)
		autosave = store.NewMemStore()
	} else {
		autosave = store.WithFallback(cache)
	}

	state := app.NewState(autosave)

	win := mainwindow.New(fyneApp, state, appPrefs)

	switch {
	case len(os.Args) > 1:
		if err := state.Load(os.Args[1]); err != nil {
			log.Printf("Failed to load board %s: %v", os.Args[1], err)
		}
	default:
		if state.RestoreAutosave() {
			log.Printf("Restored autosaved board")
		}
	}

	setupHotReload(win)

	win.Start()
	fyneApp.Run()
}

// setupHotReload offers a restart when the binary is recompiled underneath a
// running development session.
func setupHotReload(win *mainwindow.MainWindow) {
	reloader := app.NewHotReloader(2 * time.Second)
	if reloader == nil {
		log.Println("Hot reload: unable to determine executable path")
		return
	}

	reloader.OnNewBinary(func() {
		log.Println("Hot reload: newer binary detected")
		dialog.ShowConfirm("New Version Available",
			"The application binary has been updated.\nRestart now?",
			func(ok bool) {
				if !ok {
					reloader.ResetBaseline()
					reloader.Start()
					return
				}
				log.Println("Hot reload: restarting")
				if err := reloader.Restart(); err != nil {
					log.Printf("Hot reload: restart failed: %v", err)
				}
			}, win.Window)
	})

	reloader.Start()
}
