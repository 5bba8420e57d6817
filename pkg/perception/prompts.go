package perception

// promptAssessScene asks for the coarse workspace state.
const promptAssessScene = `Look at this image of a table or workspace. Determine the current state of the scene. Respond with ONLY one of the following labels, nothing else:

  no_book       - no book is visible on the table
  book_closed   - a book is present but closed
  book_open     - a book is open and pages are visible
  book_done     - the book is open to the last page or back cover
`

// promptClassifyPage asks for the page type of an open spread.
const promptClassifyPage = `Look at this image of a book page. Classify it as ONE of the following types. Respond with ONLY the type label, nothing else.

  blank     - empty page, no meaningful text
  index     - index, glossary, or bibliography page
  cover     - front or back cover
  title     - title page, half-title, or dedication page
  toc       - table of contents
  content   - regular content page (chapter text, articles, etc.)
`

// readBaseRules is shared by both sides and both modes.
const readBaseRules = `You are reading a book aloud to a listener. This image shows an open book with one or two pages visible (a spread).

CRITICAL RULES:
1. First, determine the page orientation. The image may be rotated or angled. Mentally rotate it so the text is upright before reading.
2. Within the page, read top to bottom, left to right.
3. Do NOT rearrange text by size or importance -- follow the physical layout.
4. For structural pages (cover, title page, table of contents): read all the text as it appears.

Never describe the page. Never say 'This page contains...' or 'The header reads...'. Just read what's there. If a word is unclear, give your best guess.`

const readLeftRule = `
Read ONLY the LEFT page. Ignore the right page entirely. If a title or header spans both pages, read it once.`

const readRightRule = `
Read ONLY the RIGHT page. Ignore the left page entirely. If a title or header spans both pages, skip it; it was already read with the left page.`

const readVerboseRule = `
Read EVERYTHING on the page: titles, headings, subheadings, and all body text. For content pages, read naturally, like storytime -- warm and human. Flow smoothly from sentence to sentence.`

const readSkimRule = `
ONLY read titles, headings, section headers, subheadings, and chapter names. Skip all body/paragraph text. Read them in the order they appear on the page.`

// readPrompt composes the system prompt for one side and mode.
func readPrompt(side Side, mode Mode) string {
	prompt := readBaseRules
	if side == SideRight {
		prompt += readRightRule
	} else {
		prompt += readLeftRule
	}
	if mode == ModeSkim {
		prompt += readSkimRule
	} else {
		prompt += readVerboseRule
	}
	return prompt
}
