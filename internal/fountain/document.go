/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// Options configure a parse. The zero value is the default configuration:
// literal nesting, emphasis markers stripped, the built-in classifier.
type Options struct {
	Nesting      NestingPolicy
	KeepEmphasis bool
	Classify     ClassifyFunc
}

// Option mutates parse options.
type Option func(*Options)

// WithNestingPolicy selects the same-kind nested marker behavior.
func WithNestingPolicy(p NestingPolicy) Option {
	return func(o *Options) { o.Nesting = p }
}

// WithKeepEmphasis leaves * and _ marker bytes in the stripped text.
func WithKeepEmphasis(keep bool) Option {
	return func(o *Options) { o.KeepEmphasis = keep }
}

// WithClassifier replaces the built-in element classifier. The function is
// called exactly once per line, in document order.
func WithClassifier(f ClassifyFunc) Option {
	return func(o *Options) { o.Classify = f }
}

// Document is a fully parsed screenplay. It keeps both representations of the
// text: the raw lines as given and the stripped lines with ranged content and
// emphasis markers removed, joined per line by an invertible index map.
type Document struct {
	RawLines []string
	Lines    []*Line
	Ranges   []ResolvedRange
	Stripped []StrippedLine
	Elements []Element
}

// Parse parses a complete Fountain document. CRLF line endings are
// normalized; one trailing newline is not counted as an extra empty line.
// The only error condition is a *NestingError under NestReject.
func Parse(text string, opts ...Option) (*Document, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Classify == nil {
		o.Classify = NewClassifier().Func()
	}

	raw := splitLines(text)
	occs := ScanMarkers(raw)
	ranges, err := ResolveRanges(raw, occs, o.Nesting)
	if err != nil {
		return nil, err
	}
	states := ClassifyLines(raw, ranges)
	stripped := StripLines(raw, ranges, states, StripOptions{KeepEmphasis: o.KeepEmphasis})

	// Classify every line once, range-only lines included: they advance the
	// classifier context even though they produce no printable element.
	types := make([]ElementType, len(stripped))
	for i, sl := range stripped {
		types[i] = o.Classify(sl.Text)
	}
	fixDanglingCues(types, states)

	d := &Document{
		RawLines: raw,
		Ranges:   ranges,
		Stripped: stripped,
		Lines:    make([]*Line, len(raw)),
	}
	pos := 0
	for i, text := range raw {
		d.Lines[i] = &Line{
			Type:     types[i],
			Text:     stripped[i].Text,
			Raw:      text,
			Index:    i,
			Position: pos,
			State:    states[i],
		}
		pos += len(text) + 1
	}

	next := 0
	pipe := Pipeline{
		Classify: func(string) ElementType { t := types[next]; next++; return t },
		Ranges:   ranges,
		RawLines: raw,
	}
	d.Elements = pipe.Run(stripped)
	return d, nil
}

// splitLines normalizes CRLF endings and splits into lines. A single trailing
// newline terminates the last line rather than opening an empty one; empty
// input has no lines at all.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// fixDanglingCues retypes a Character cue to Action when the next printable
// line is empty. Mirrors the element pipeline so line types and element types
// agree.
func fixDanglingCues(types []ElementType, states []LineState) {
	last := -1
	for i := range types {
		if states[i] == RangeOnly {
			continue
		}
		if types[i] == Empty && last >= 0 && types[last] == Character {
			types[last] = Action
		}
		last = i
	}
}

// StrippedText returns the stripped document joined with newlines.
func (d *Document) StrippedText() string {
	parts := make([]string, len(d.Stripped))
	for i, sl := range d.Stripped {
		parts[i] = sl.Text
	}
	return strings.Join(parts, "\n")
}

// RawPosition maps a stripped position back to the raw document. The line
// index is shared between representations; only the column translates.
func (d *Document) RawPosition(p Pos) Pos {
	if p.Line < 0 || p.Line >= len(d.Stripped) {
		return p
	}
	return Pos{Line: p.Line, Col: d.Stripped[p.Line].Map.RawIndex(p.Col)}
}

// StrippedPosition maps a raw position into the stripped document. When the
// raw byte was removed, ok is false and the position is the stripped boundary
// the removed content collapsed onto.
func (d *Document) StrippedPosition(p Pos) (Pos, bool) {
	if p.Line < 0 || p.Line >= len(d.Stripped) {
		return p, false
	}
	col, ok := d.Stripped[p.Line].Map.StrippedIndex(p.Col)
	return Pos{Line: p.Line, Col: col}, ok
}

// Annotations returns the Note and Boneyard elements in document order.
func (d *Document) Annotations() []Element {
	var out []Element
	for _, el := range d.Elements {
		if el.Type == NoteElement || el.Type == BoneyardElement {
			out = append(out, el)
		}
	}
	return out
}

// Notes returns the Note elements only.
func (d *Document) Notes() []Element {
	var out []Element
	for _, el := range d.Elements {
		if el.Type == NoteElement {
			out = append(out, el)
		}
	}
	return out
}

// Scenes returns the scene heading lines in document order.
func (d *Document) Scenes() []*Line {
	var out []*Line
	for _, l := range d.Lines {
		if l.Type == Heading {
			out = append(out, l)
		}
	}
	return out
}

// Characters returns the distinct character names in order of first
// appearance, with cue decorations (@ prefix, extension, ^ suffix) removed.
func (d *Document) Characters() []string {
	var out []string
	seen := map[string]bool{}
	for _, l := range d.Lines {
		if !l.IsAnyCharacter() {
			continue
		}
		name := characterName(l.Text)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// TitlePage collects the title page key/value pairs. Continuation lines are
// joined to their key's value with newlines; keys are lowercased.
func (d *Document) TitlePage() map[string]string {
	page := map[string]string{}
	key := ""
	for _, l := range d.Lines {
		if !l.IsTitlePage() && l.Type != TitlePageUnknown {
			break
		}
		if k := l.TitlePageKey(); k != "" {
			key = k
			v := strings.TrimSpace(l.Text[strings.Index(l.Text, ":")+1:])
			page[key] = v
			continue
		}
		if key == "" {
			continue
		}
		v := strings.TrimSpace(l.Text)
		if page[key] == "" {
			page[key] = v
		} else if v != "" {
			page[key] += "\n" + v
		}
	}
	return page
}

// characterName strips cue decorations: the @ force marker, a parenthesized
// extension like (V.O.), and the dual dialogue caret.
func characterName(text string) string {
	name := strings.TrimSpace(text)
	name = strings.TrimPrefix(name, "@")
	if i := strings.Index(name, "("); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(strings.TrimSpace(name), "^")
	return strings.TrimSpace(name)
}
