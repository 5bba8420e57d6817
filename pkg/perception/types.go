// Package perception implements the camera-facing skills: scene assessment,
// page classification, and streaming page reading, all backed by remote
// vision-language inference.
package perception

import "strings"

// SceneState is the coarse classification of the workspace, recomputed
// every cycle and never persisted beyond it.
type SceneState string

// Scene states.
const (
	SceneNoBook     SceneState = "no_book"     // no book visible
	SceneBookClosed SceneState = "book_closed" // book present but closed
	SceneBookOpen   SceneState = "book_open"   // spread visible
	SceneBookDone   SceneState = "book_done"   // last page or back cover
)

var sceneStates = []SceneState{SceneNoBook, SceneBookClosed, SceneBookOpen, SceneBookDone}

// ParseSceneState normalizes a raw model label by substring match.
func ParseSceneState(raw string) (SceneState, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range sceneStates {
		if strings.Contains(normalized, string(s)) {
			return s, true
		}
	}
	return "", false
}

// PageType classifies one spread of an open book.
type PageType string

// Page types.
const (
	PageBlank   PageType = "blank"   // no meaningful text
	PageIndex   PageType = "index"   // index, glossary, or bibliography
	PageCover   PageType = "cover"   // front or back cover
	PageTitle   PageType = "title"   // title page, half-title, dedication
	PageTOC     PageType = "toc"     // table of contents
	PageContent PageType = "content" // regular content page
)

var pageTypes = []PageType{PageBlank, PageIndex, PageCover, PageTitle, PageTOC, PageContent}

// ParsePageType normalizes a raw model label by substring match.
func ParsePageType(raw string) (PageType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range pageTypes {
		if strings.Contains(normalized, string(t)) {
			return t, true
		}
	}
	return "", false
}

// Readable reports whether a page type is read aloud. Blank and index
// pages are skipped.
func (t PageType) Readable() bool {
	return t != PageBlank && t != PageIndex
}

// Side selects one half of an open spread.
type Side string

// Spread sides.
const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Mode selects how much of a page is read.
type Mode string

// Reading modes.
const (
	// ModeSkim reads titles and headings only.
	ModeSkim Mode = "skim"

	// ModeVerbose reads the full narrated text.
	ModeVerbose Mode = "verbose"
)
