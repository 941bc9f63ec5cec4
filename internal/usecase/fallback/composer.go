// Package fallback assembles scenes and outlines without a language model.
//
// Content comes from the most relevant corpus excerpts first; every slot the excerpts
// cannot fill gets a fixed filler line chosen by hashing the prompt. The output is a
// pure function of the prompt and the excerpts.
package fallback

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/scriptforge/internal/domain/generation"
	"github.com/kailas-cloud/scriptforge/internal/domain/screenplay"
	"github.com/kailas-cloud/scriptforge/internal/usecase/relevance"
)

// outlineTitleChars is how much of the prompt goes into the outline title.
const outlineTitleChars = 50

// Beat positions within Fields.Beats.
const (
	BeatOpening = iota
	BeatIncitingIncident
	BeatRisingAction
	BeatMidpoint
	BeatComplications
	BeatClimax
	BeatFallingAction
	BeatResolution
	beatCount
)

// Fields are the slots extracted from excerpts. Empty means "use filler".
type Fields struct {
	Heading           string
	Description       string
	Character         string
	Dialogue          string
	ResponseCharacter string
	Response          string
	Beats             [beatCount]string
}

// Composer builds fallback content.
type Composer struct {
	excerptChars int
}

// New creates a composer that reads at most excerptChars characters of each excerpt.
func New(excerptChars int) *Composer {
	if excerptChars <= 0 {
		excerptChars = relevance.DefaultExcerptChars
	}
	return &Composer{excerptChars: excerptChars}
}

// Compose dispatches on output type.
func (c *Composer) Compose(prompt string, outputType generation.OutputType, excerpts []relevance.Scored) string {
	if outputType == generation.Outline {
		return c.Outline(prompt, excerpts)
	}
	return c.Scene(prompt, excerpts)
}

// Extract parses the excerpt bodies into slots. Bodies are separated by a blank line
// so a cue ending one script never pairs with the first line of the next.
func (c *Composer) Extract(excerpts []relevance.Scored) Fields {
	bodies := make([]string, len(excerpts))
	for i, e := range excerpts {
		bodies[i] = relevance.Excerpt(e.Document, c.excerptChars)
	}
	parsed := screenplay.Parse(strings.Join(bodies, "\n\n"))

	var f Fields
	if len(parsed.Scenes) > 0 {
		f.Heading = parsed.Scenes[0]
	}
	if len(parsed.Dialogue) > 0 {
		f.Character = parsed.Dialogue[0].Character
		f.Dialogue = parsed.Dialogue[0].Line
	}
	if len(parsed.Dialogue) > 1 {
		f.ResponseCharacter = parsed.Dialogue[1].Character
		f.Response = parsed.Dialogue[1].Line
	}
	if len(parsed.Descriptions) > 0 {
		f.Description = parsed.Descriptions[0]
	}
	for i := 0; i < beatCount && i < len(parsed.Descriptions); i++ {
		f.Beats[i] = parsed.Descriptions[i]
	}
	return f
}

// Scene renders a single screenplay scene.
func (c *Composer) Scene(prompt string, excerpts []relevance.Scored) string {
	f := c.Extract(excerpts)
	idx := Index(prompt)

	return fmt.Sprintf(`FADE IN:

%s

%s

%s
%s

%s
%s

%s

FADE OUT.`,
		or(f.Heading, defaultHeading),
		or(f.Description, sceneDescriptions[idx]),
		or(f.Character, defaultCharacter),
		or(f.Dialogue, dialogueLines[idx]),
		or(f.ResponseCharacter, defaultResponseCharacter),
		or(f.Response, responseLines[idx]),
		actionLines[idx],
	)
}

// Outline renders a three-act outline.
func (c *Composer) Outline(prompt string, excerpts []relevance.Scored) string {
	f := c.Extract(excerpts)
	idx := Index(prompt)
	plot := plotPoints[idx]

	return fmt.Sprintf(`MOVIE OUTLINE: %s...

ACT I - SETUP
- Opening scene: %s
- Introduce main character: %s
- Inciting incident: %s

ACT II - CONFRONTATION
- Rising action: %s
- Midpoint: %s
- Complications: %s

ACT III - RESOLUTION
- Climax: %s
- Falling action: %s
- Resolution: %s

THEMES: %s
GENRE: %s`,
		truncate(prompt, outlineTitleChars),
		or(f.Beats[BeatOpening], sceneDescriptions[idx]),
		characterDescriptions[idx],
		or(f.Beats[BeatIncitingIncident], plot),
		or(f.Beats[BeatRisingAction], plot),
		or(f.Beats[BeatMidpoint], plot),
		or(f.Beats[BeatComplications], plot),
		or(f.Beats[BeatClimax], plot),
		or(f.Beats[BeatFallingAction], plot),
		or(f.Beats[BeatResolution], plot),
		themes[idx],
		genres[idx],
	)
}

func or(v, filler string) string {
	if v != "" {
		return v
	}
	return filler
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
