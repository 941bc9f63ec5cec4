// Package screenplay extracts structural elements from plain-text screenplays.
package screenplay

import (
	"fmt"
	"regexp"
	"strings"
)

// Extraction caps. Matches past the cap are dropped, not sampled.
const (
	MaxScenes       = 10
	MaxCharacters   = 20
	MaxDialogue     = 15
	MaxDescriptions = 10

	minCharacterLen   = 3
	minDescriptionLen = 21
)

var (
	sceneRegex     = regexp.MustCompile(`^(INT\.|EXT\.|INT/EXT\.).*$`)
	characterRegex = regexp.MustCompile(`^[A-Z\s]+$`)
)

// Exchange is a character cue paired with the line that follows it.
type Exchange struct {
	Character string
	Line      string
}

// String renders the exchange as "NAME: line".
func (e Exchange) String() string {
	return e.Character + ": " + e.Line
}

// MarshalText encodes the exchange in its "NAME: line" form.
func (e Exchange) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText decodes "NAME: line". Character names never contain a colon.
func (e *Exchange) UnmarshalText(b []byte) error {
	name, line, ok := strings.Cut(string(b), ": ")
	if !ok {
		return fmt.Errorf("dialogue %q: missing \": \" separator", b)
	}
	e.Character, e.Line = name, line
	return nil
}

// Script is the parsed view over screenplay text. It does not own the text.
type Script struct {
	Scenes       []string   `json:"scenes"`
	Characters   []string   `json:"characters"`
	Dialogue     []Exchange `json:"dialogue"`
	Descriptions []string   `json:"descriptions"`
}

// IsSceneHeading reports whether line starts with INT., EXT. or INT/EXT.
func IsSceneHeading(line string) bool {
	return sceneRegex.MatchString(line)
}

// IsCharacterCue reports whether the trimmed line is made of uppercase letters and spaces only.
func IsCharacterCue(line string) bool {
	return characterRegex.MatchString(strings.TrimSpace(line))
}

// Parse extracts scene headings, character cues, dialogue exchanges and description lines.
func Parse(text string) Script {
	lines := splitLines(text)

	s := Script{
		Scenes:       []string{},
		Characters:   []string{},
		Dialogue:     []Exchange{},
		Descriptions: []string{},
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if len(s.Scenes) < MaxScenes && IsSceneHeading(line) {
			s.Scenes = append(s.Scenes, line)
		}

		cue := IsCharacterCue(trimmed)
		if cue && len(s.Characters) < MaxCharacters && len(trimmed) >= minCharacterLen {
			s.Characters = append(s.Characters, trimmed)
		}

		if cue && len(s.Dialogue) < MaxDialogue && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && !IsCharacterCue(next) {
				s.Dialogue = append(s.Dialogue, Exchange{Character: trimmed, Line: next})
			}
		}

		if len(s.Descriptions) < MaxDescriptions && isDescription(trimmed, cue) {
			s.Descriptions = append(s.Descriptions, trimmed)
		}
	}

	return s
}

func isDescription(trimmed string, cue bool) bool {
	if trimmed == "" || cue || IsSceneHeading(trimmed) {
		return false
	}
	if strings.HasPrefix(trimmed, "(") || strings.HasPrefix(trimmed, "FADE") {
		return false
	}
	return len([]rune(trimmed)) >= minDescriptionLen
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
