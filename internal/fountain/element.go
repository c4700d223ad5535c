/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

// ElementType is the screenplay element kind assigned to a line.
type ElementType int

const (
	Empty ElementType = iota
	Section
	Synopsis
	TitlePageTitle
	TitlePageAuthor
	TitlePageCredit
	TitlePageSource
	TitlePageContact
	TitlePageDraftDate
	TitlePageUnknown
	Heading
	Action
	Character
	Parenthetical
	Dialogue
	DualDialogueCharacter
	DualDialogueParenthetical
	DualDialogue
	Transition
	Lyrics
	PageBreak
	Centered
	Shot
	// More and DualDialogueMore are synthetic elements used by exporters for
	// dialogue split across page breaks; the parser never emits them.
	More
	DualDialogueMore
	// NoteElement and BoneyardElement are side-channel annotation elements
	// carrying the raw span of a ranged element. They hold no printable text.
	NoteElement
	BoneyardElement
	Unparsed
)

var elementTypeNames = map[ElementType]string{
	Empty:                     "Empty",
	Section:                   "Section",
	Synopsis:                  "Synopsis",
	TitlePageTitle:            "TitlePageTitle",
	TitlePageAuthor:           "TitlePageAuthor",
	TitlePageCredit:           "TitlePageCredit",
	TitlePageSource:           "TitlePageSource",
	TitlePageContact:          "TitlePageContact",
	TitlePageDraftDate:        "TitlePageDraftDate",
	TitlePageUnknown:          "TitlePageUnknown",
	Heading:                   "Heading",
	Action:                    "Action",
	Character:                 "Character",
	Parenthetical:             "Parenthetical",
	Dialogue:                  "Dialogue",
	DualDialogueCharacter:     "DualDialogueCharacter",
	DualDialogueParenthetical: "DualDialogueParenthetical",
	DualDialogue:              "DualDialogue",
	Transition:                "Transition",
	Lyrics:                    "Lyrics",
	PageBreak:                 "PageBreak",
	Centered:                  "Centered",
	Shot:                      "Shot",
	More:                      "More",
	DualDialogueMore:          "DualDialogueMore",
	NoteElement:               "Note",
	BoneyardElement:           "Boneyard",
	Unparsed:                  "Unparsed",
}

func (t ElementType) String() string {
	if s, ok := elementTypeNames[t]; ok {
		return s
	}
	return "ElementType(?)"
}

// RawSpan addresses a region of the raw document, inclusive start position,
// exclusive end column on the end line.
type RawSpan struct {
	Start Pos
	End   Pos
}

// Element is one unit of parser output. Text is the stripped line text (or,
// for annotation elements, the raw content between the markers). Span is set
// for lines whose state was not Plain and for annotation elements; it allows
// round-tripping back to the original document.
type Element struct {
	Type ElementType
	Text string
	Line int // raw line index of origin
	Span *RawSpan
}

// ClassifyFunc assigns an element type to a single stripped line. It is a
// pure function of the text it is given and is never told about ranges.
type ClassifyFunc func(stripped string) ElementType

// Pipeline assembles the final element sequence from stripped lines. The
// classifier collaborator is invoked exactly once per stripped line, in
// order; RangeOnly lines contribute no printable element but the ranges
// themselves surface as annotation elements where they start.
type Pipeline struct {
	Classify ClassifyFunc
	Ranges   []ResolvedRange
	RawLines []string
}

// Run produces the ordered element sequence. Annotation elements for ranges
// starting on a line are emitted after that line's printable element. A
// Character element directly followed by an Empty line is retyped as Action:
// a cue needs a non-empty line after it.
func (p *Pipeline) Run(stripped []StrippedLine) []Element {
	var out []Element
	lastPrintable := -1
	for _, sl := range stripped {
		t := p.Classify(sl.Text)
		if sl.State != RangeOnly {
			el := Element{Type: t, Text: sl.Text, Line: sl.RawLine}
			if sl.State != Plain {
				el.Span = rangedSpanOf(sl)
			}
			if t == Empty && lastPrintable >= 0 && out[lastPrintable].Type == Character {
				out[lastPrintable].Type = Action
			}
			out = append(out, el)
			lastPrintable = len(out) - 1
		}
		for _, r := range p.Ranges {
			if r.Start.Line != sl.RawLine {
				continue
			}
			out = append(out, p.annotation(r))
		}
	}
	return out
}

// rangedSpanOf computes the line-local raw extent of removed ranged content,
// from the first removed span to the last.
func rangedSpanOf(sl StrippedLine) *RawSpan {
	if len(sl.Ranged) == 0 {
		return nil
	}
	first := sl.Ranged[0]
	last := sl.Ranged[len(sl.Ranged)-1]
	return &RawSpan{
		Start: Pos{Line: sl.RawLine, Col: first.Start},
		End:   Pos{Line: sl.RawLine, Col: last.End},
	}
}

// annotation builds the side-channel element for a resolved range. Text is
// the raw content between the markers (markers excluded when present).
func (p *Pipeline) annotation(r ResolvedRange) Element {
	t := NoteElement
	if r.Kind == Boneyard {
		t = BoneyardElement
	}
	return Element{
		Type: t,
		Text: rangeContent(p.RawLines, r),
		Line: r.Start.Line,
		Span: &RawSpan{Start: r.Start, End: r.End},
	}
}

// rangeContent extracts the raw text a range covers, joined with \n across
// lines, with the open/close marker tokens trimmed according to status.
func rangeContent(lines []string, r ResolvedRange) string {
	if len(lines) == 0 || r.Start.Line >= len(lines) {
		return ""
	}
	var parts []string
	for ln := r.Start.Line; ln <= r.End.Line && ln < len(lines); ln++ {
		text := lines[ln]
		lo, hi := 0, len(text)
		if ln == r.Start.Line {
			lo = r.Start.Col
		}
		if ln == r.End.Line && r.End.Col < hi {
			hi = r.End.Col
		}
		if lo > hi {
			lo = hi
		}
		parts = append(parts, text[lo:hi])
	}
	content := joinLines(parts)
	if r.Status == Closed || r.Status == OrphanedOpen {
		open, _ := r.Kind.Tokens()
		content = trimPrefixOnce(content, open)
	}
	if r.Status == Closed || r.Status == OrphanedClose {
		_, close := r.Kind.Tokens()
		content = trimSuffixOnce(content, close)
	}
	return content
}

func joinLines(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	n := len(parts) - 1
	for _, p := range parts {
		n += len(p)
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '\n')
		}
		b = append(b, p...)
	}
	return string(b)
}

func trimPrefixOnce(s, prefix string) string {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

func trimSuffixOnce(s, suffix string) string {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}
