package canvas

import (
	"strings"
	"unicode"
)

// DefaultCaretBlinkRate is the caret blink half-period in seconds.
const DefaultCaretBlinkRate = 0.5

var (
	placeholderColor   = Color{0.8, 0.8, 0.8, 1}
	defaultLabelMargin = Insets{Left: 10, Right: 10}
)

// InputField is a single-line text entry. It takes focus when a touch goes
// down and up inside it, and loses focus on a touch that ends elsewhere.
// While focused it blinks a caret and appends typed characters when the
// caret sits after the last character.
type InputField struct {
	Base

	placeholder *Label
	label       *Label
	caret       *Sprite
	labelMargin Insets

	caretBlinkRate float32
	caretShow      bool
	caretBlinkTime float32
	caretLine      int
	caretIndex     int

	touchDown bool
	focused   bool
	now       float32
}

// NewInputField creates an empty, unfocused input field that fills its
// parent. Both the text and the placeholder use font.
func NewInputField(name string, font Font) *InputField {
	f := &InputField{
		labelMargin:    defaultLabelMargin,
		caretBlinkRate: DefaultCaretBlinkRate,
		caretShow:      true,
		caretLine:      -1,
		caretIndex:     -1,
	}
	f.init(f, name)

	f.placeholder = newFieldLabel(name+".placeholder", font, f.labelMargin)
	f.placeholder.SetColor(placeholderColor)
	f.AddSubview(f.placeholder)

	f.label = newFieldLabel(name+".text", font, f.labelMargin)
	f.label.SetColor(ColorBlack)
	f.AddSubview(f.label)

	f.caret = NewRect(name+".caret", 1, DefaultFontSize, ColorBlack)
	f.caret.SetAlignment(AlignLeft | AlignVCenter)
	f.caret.SetTouchEnabled(false)
	return f
}

func newFieldLabel(name string, font Font, margin Insets) *Label {
	l := NewLabel(name, font)
	l.SetMargin(margin)
	l.SetTextAlignment(AlignLeft | AlignVCenter)
	l.SetFontSize(DefaultFontSize)
	l.SetTouchEnabled(false)
	return l
}

// Text returns the entered text.
func (f *InputField) Text() string { return f.label.Text() }

// SetText replaces the entered text. The placeholder is shown only while
// the text is empty.
func (f *InputField) SetText(text string) {
	f.label.SetText(text)
	if text != "" {
		if f.placeholder.Parent() == View(f) {
			f.RemoveSubview(f.placeholder)
		}
	} else if f.placeholder.Parent() == nil {
		f.AddSubviewAt(f.placeholder, 0)
	}
	if f.focused {
		f.moveCaretToEnd()
	}
}

// PlaceholderText returns the hint shown while the field is empty.
func (f *InputField) PlaceholderText() string { return f.placeholder.Text() }

// SetPlaceholderText sets the hint shown while the field is empty.
func (f *InputField) SetPlaceholderText(s string) { f.placeholder.SetText(s) }

// SetPlaceholderColor sets the hint color.
func (f *InputField) SetPlaceholderColor(c Color) { f.placeholder.SetColor(c) }

// SetCaretBlinkRate sets the interval in seconds between caret toggles.
func (f *InputField) SetCaretBlinkRate(rate float32) { f.caretBlinkRate = rate }

// Placeholder returns the placeholder label.
func (f *InputField) Placeholder() *Label { return f.placeholder }

// TextLabel returns the label showing the entered text.
func (f *InputField) TextLabel() *Label { return f.label }

// Caret returns the caret sprite. It is a subview only while focused.
func (f *InputField) Caret() *Sprite { return f.caret }

// CaretPos returns the caret line and glyph index. The caret sits after the
// glyph at index; (-1, -1) and an index of -1 both mean the start of the line.
func (f *InputField) CaretPos() (line, index int) { return f.caretLine, f.caretIndex }

// CaretVisible reports whether the caret is attached and in its shown phase.
func (f *InputField) CaretVisible() bool {
	return f.caret.Parent() == View(f) && f.caretShow
}

// Focused implements Focusable.
func (f *InputField) Focused() bool { return f.focused }

// Focus gives the field focus as if it had been tapped.
func (f *InputField) Focus() {
	if f.focused {
		return
	}
	f.focused = true
	f.gotFocus()
	if r := f.Canvas(); r != nil {
		r.input.focus(f)
	}
}

// Blur implements Focusable.
func (f *InputField) Blur() {
	f.touchDown = false
	if f.focused {
		f.focused = false
		f.lostFocus()
	}
}

// HandleTouchEvent implements View.
func (f *InputField) HandleTouchEvent(kind TouchKind, _ Vec2) bool {
	switch kind {
	case TouchDownInside:
		f.touchDown = true
		return true
	case TouchUpInside:
		if f.touchDown {
			f.touchDown = false
			f.Focus()
		}
		return true
	case TouchUpOutside:
		f.Blur()
	}
	return false
}

// UpdateFrame implements FrameUpdater.
func (f *InputField) UpdateFrame(ctx *FrameContext) {
	f.now = ctx.Time
	if !f.focused {
		return
	}
	if ctx.Time-f.caretBlinkTime > f.caretBlinkRate {
		f.caretShow = !f.caretShow
		f.caret.SetAlpha(boolAlpha(f.caretShow))
		f.caretBlinkTime = ctx.Time
	}

	if len(ctx.Chars) == 0 {
		return
	}
	// Backspace, enter and other control characters are dropped.
	var sb strings.Builder
	for _, r := range ctx.Chars {
		if unicode.IsPrint(r) {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return
	}
	if f.caretAtEnd() {
		f.SetText(f.label.Text() + sb.String())
		f.moveCaretToEnd()
	} else {
		Logger().Debug("input field insertion before the end is not supported", "view", f.Name)
	}
}

func (f *InputField) gotFocus() {
	f.AddSubview(f.caret)
	f.moveCaretToEnd()
	f.caretShow = true
	f.caret.SetAlpha(1)
	f.caretBlinkTime = f.clock()
}

func (f *InputField) lostFocus() {
	if f.caret.Parent() == View(f) {
		f.RemoveSubview(f.caret)
	}
}

func (f *InputField) clock() float32 {
	if r := f.Canvas(); r != nil {
		return r.Time()
	}
	return f.now
}

func (f *InputField) caretAtEnd() bool {
	if f.caretLine < 0 && f.caretIndex < 0 {
		return true
	}
	lines := f.label.Lines()
	last := len(lines) - 1
	return f.caretLine == last && f.caretIndex == len(lines[last].Glyphs)-1
}

func (f *InputField) moveCaretToEnd() {
	lines := f.label.Lines()
	if len(lines) == 0 {
		f.setCaretPos(-1, -1)
		return
	}
	last := len(lines) - 1
	f.setCaretPos(last, len(lines[last].Glyphs)-1)
}

// setCaretPos places the caret after glyph index of line.
func (f *InputField) setCaretPos(line, index int) {
	x := f.labelMargin.Left
	if line >= 0 && index >= 0 {
		x += f.label.Lines()[line].Glyphs[index].Rect.Right()
	}
	f.caret.SetOffset(x, 0)
	f.caretLine, f.caretIndex = line, index
}

func boolAlpha(v bool) float32 {
	if v {
		return 1
	}
	return 0
}
