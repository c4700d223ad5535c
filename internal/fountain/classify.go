/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import (
	"strings"
	"unicode/utf8"
)

// Classifier assigns element types to stripped lines, one call per line in
// document order. Fountain is context-sensitive one line back (a dialogue
// line is dialogue because a character cue precedes it), so the classifier
// remembers the previous line it saw. It knows nothing about ranges.
type Classifier struct {
	prev    *Line
	started bool
}

// NewClassifier returns a classifier positioned before the first line.
func NewClassifier() *Classifier { return &Classifier{} }

// Func adapts the classifier to the pipeline's ClassifyFunc collaborator.
func (c *Classifier) Func() ClassifyFunc { return c.Next }

// Next classifies one line and advances the context.
func (c *Classifier) Next(text string) ElementType {
	t := c.classify(text)
	c.prev = &Line{Type: t, Text: text}
	c.started = true
	return t
}

func (c *Classifier) classify(text string) ElementType {
	prevEmpty := !c.started || c.prev.Type == Empty

	if len(text) == 0 {
		return Empty
	}
	if t, ok := checkForcedElement(text, prevEmpty); ok {
		return t
	}
	if t, ok := checkTitlePageElement(text, c.prev); ok {
		return t
	}
	if t, ok := checkTransition(text, prevEmpty); ok {
		return t
	}
	// Elements below need an empty line before them.
	if t, ok := checkHeading(text, prevEmpty); ok {
		return t
	}
	if t, ok := checkDualDialogue(text, c.prev); ok {
		return t
	}
	if t, ok := checkCharacter(text, c.prev); ok {
		return t
	}
	if t, ok := checkDialogueOrParenthetical(text, c.prev); ok {
		return t
	}
	return Action
}

func checkForcedElement(text string, prevEmpty bool) (ElementType, bool) {
	first, _ := utf8.DecodeRuneInString(text)
	last, _ := utf8.DecodeLastRuneInString(text)

	// Whitespace-only lines are empty unless they are an intentional blank
	// of two or more spaces.
	if strings.TrimSpace(text) == "" {
		if first == ' ' && last == ' ' && len(text) > 1 {
			return 0, false
		}
		return Empty, true
	}

	if text == "===" {
		return PageBreak, true
	}

	switch first {
	case '!':
		if strings.HasPrefix(text, "!!") {
			return Shot, true
		}
		return Action, true
	case '.':
		// A single leading period forces a heading; ".." does not, so
		// dialogue like ".44" survives as-is.
		if !strings.HasPrefix(text, "..") {
			return Heading, true
		}
		return 0, false
	case '>':
		if last == '<' {
			return Centered, true
		}
		return Transition, true
	case '~':
		return Lyrics, true
	case '=':
		return Synopsis, true
	case '#':
		return Section, true
	case '@':
		if last == '^' && prevEmpty {
			return DualDialogueCharacter, true
		}
		return Character, true
	}
	return 0, false
}

func checkTitlePageElement(text string, prev *Line) (ElementType, bool) {
	if prev != nil && !prev.IsTitlePage() {
		return 0, false
	}
	switch key := titlePageKey(text); key {
	case "":
	case "title":
		return TitlePageTitle, true
	case "author", "authors":
		return TitlePageAuthor, true
	case "credit":
		return TitlePageCredit, true
	case "source":
		return TitlePageSource, true
	case "contact", "contacts", "contact info":
		return TitlePageContact, true
	case "draft date", "draft":
		return TitlePageDraftDate, true
	default:
		return TitlePageUnknown, true
	}
	// Indented or key-less continuation lines inherit the previous type.
	if prev != nil {
		if prev.TitlePageKey() != "" || strings.HasPrefix(text, "\t") || strings.HasPrefix(text, "   ") {
			return prev.Type, true
		}
	}
	return 0, false
}

func checkTransition(text string, prevEmpty bool) (ElementType, bool) {
	if len(text) > 2 && strings.HasSuffix(text, ":") && text == strings.ToUpper(text) && prevEmpty {
		return Transition, true
	}
	return 0, false
}

func checkHeading(text string, prevEmpty bool) (ElementType, bool) {
	if !prevEmpty || len(text) < 3 {
		return 0, false
	}
	switch strings.ToLower(text[:3]) {
	case "int", "ext", "est", "i/e":
	default:
		return 0, false
	}
	// The prefix has to end with a dot, space or slash, so "international"
	// never becomes a heading.
	if len(text) == 3 {
		return 0, false
	}
	switch text[3] {
	case '.', ' ', '/':
		return Heading, true
	}
	return 0, false
}

func checkDualDialogue(text string, prev *Line) (ElementType, bool) {
	if prev == nil || !prev.IsDualDialogue() {
		return 0, false
	}
	if strings.HasPrefix(text, "(") {
		return DualDialogueParenthetical, true
	}
	return DualDialogue, true
}

func checkCharacter(text string, prev *Line) (ElementType, bool) {
	if !uppercaseUntilParenthesis(text) {
		return 0, false
	}
	if text != strings.TrimSpace(text) && strings.HasPrefix(text, "  ") {
		return 0, false
	}
	if strings.HasSuffix(text, "^") {
		return DualDialogueCharacter, true
	}
	// An ALL-CAPS line directly after a non-empty line is just loud action.
	if prev != nil && prev.Type != Empty {
		return Action, true
	}
	return Character, true
}

func checkDialogueOrParenthetical(text string, prev *Line) (ElementType, bool) {
	if prev == nil {
		return 0, false
	}
	if prev.IsDialogue() && len(prev.Text) > 0 {
		if strings.HasPrefix(text, "(") {
			return Parenthetical, true
		}
		return Dialogue, true
	}
	if prev.Type == Parenthetical {
		return Dialogue, true
	}
	return 0, false
}

// uppercaseUntilParenthesis reports whether the text before the first "(" is
// entirely uppercase and non-empty, the shape of a character cue.
func uppercaseUntilParenthesis(text string) bool {
	head, _, _ := strings.Cut(text, "(")
	return len(head) > 0 && head == strings.ToUpper(head)
}
