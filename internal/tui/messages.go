package tui

import "github.com/matheuskafuri/epaper/internal/loader"

// archiveLoadedMsg reports that ld has settled. Messages from a loader that
// was replaced by a reload are ignored.
type archiveLoadedMsg struct {
	ld *loader.Loader
}

// imageFailedMsg marks title's image as broken in one failure set of the
// layout built from ld.
type imageFailedMsg struct {
	ld    *loader.Loader
	set   string
	title string
}

type openErrMsg struct {
	err error
}
