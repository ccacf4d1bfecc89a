package main

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/yt-bw/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.yt-bw"
	AppName = "YouTube to Black & White"

	WindowWidth  = 720
	WindowHeight = 480
)

func main() {
	log.Printf("INFO: ytbw v%s starting...", version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewMonochromeTheme())

	myWindow := myApp.NewWindow(AppName + " v" + version)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	ui.NewRootUI(myWindow, myApp)

	myWindow.ShowAndRun()
}
