/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fountain

import "strings"

// Line is a single classified document line. Text is the stripped text the
// classifier saw; Raw is the original line. Position is the byte offset of
// the raw line's first byte in the document.
type Line struct {
	Type     ElementType
	Text     string
	Raw      string
	Index    int
	Position int
	State    LineState
}

// IsOutlineElement reports scene and section elements.
func (l *Line) IsOutlineElement() bool {
	return l.Type == Heading || l.Type == Section
}

// IsTitlePage reports any title page element except TitlePageUnknown.
func (l *Line) IsTitlePage() bool {
	switch l.Type {
	case TitlePageTitle, TitlePageCredit, TitlePageAuthor, TitlePageDraftDate, TitlePageContact, TitlePageSource:
		return true
	}
	return false
}

// IsDialogue reports any single dialogue element, including the cue.
func (l *Line) IsDialogue() bool {
	switch l.Type {
	case Character, Parenthetical, Dialogue, More:
		return true
	}
	return false
}

// IsDualDialogue reports any dual dialogue element, including the cue.
func (l *Line) IsDualDialogue() bool {
	switch l.Type {
	case DualDialogue, DualDialogueCharacter, DualDialogueParenthetical, DualDialogueMore:
		return true
	}
	return false
}

// IsAnySortOfDialogue reports dialogue of either column.
func (l *Line) IsAnySortOfDialogue() bool {
	return l.IsDialogue() || l.IsDualDialogue()
}

// IsAnyCharacter reports single or dual character cues.
func (l *Line) IsAnyCharacter() bool {
	return l.Type == Character || l.Type == DualDialogueCharacter
}

// IsAnyParenthetical reports single or dual parentheticals.
func (l *Line) IsAnyParenthetical() bool {
	return l.Type == Parenthetical || l.Type == DualDialogueParenthetical
}

// TitlePageKey returns the lowercased key of a "Key: value" title page line,
// or "" when the line cannot be one: no colon, colon first, leading space,
// or a key ending in " to" (which is a transition, not a title page key).
func (l *Line) TitlePageKey() string {
	return titlePageKey(l.Text)
}

func titlePageKey(text string) string {
	i := strings.Index(text, ":")
	if i <= 0 {
		return ""
	}
	if strings.HasPrefix(text, " ") {
		return ""
	}
	key := strings.ToLower(text[:i])
	if strings.HasSuffix(key, " to") {
		return ""
	}
	return key
}
