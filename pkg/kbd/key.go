package kbd

import (
	"fmt"
	"strings"
)

// KeyRollover is the max number of keys in a HID report.
const KeyRollover = 6

// Key is a logical key produced by a Layout.
//
// The low byte of keyboard keys and modifiers is the HID keyboard usage.
// Modified keys carry a modifier usage in the high byte and the keyboard
// usage in the low byte. Media keys carry the consumer usage in the low
// 12 bits.
type Key uint16

// Sentinel keys.
const (
	None        Key = 0x0000
	Transparent Key = 0x0001
)

// Keyboard keys.
const (
	A Key = iota + 0x0004
	B
	C
	D
	E
	F
	G
	H
	I
	J
	K
	L
	M
	N
	O
	P
	Q
	R
	S
	T
	U
	V
	W
	X
	Y
	Z
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9
	Digit0
	Enter
	Escape
	Delete
	Tab
	Space
	Minus
	Equal
	LeftBracket
	RightBracket
	Backslash
	NonUSHash
	Semicolon
	Apostrophe
	Grave
	Comma
	Period
	Slash
	CapsLock
	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	PrintScreen
	ScrollLock
	Pause
	Insert
	Home
	PageUp
	DeleteForward
	End
	PageDown
	RightArrow
	LeftArrow
	DownArrow
	UpArrow
	KeypadNumLock
	KeypadSlash
	KeypadAsterisk
	KeypadMinus
	KeypadPlus
	KeypadEnter
	Keypad1
	Keypad2
	Keypad3
	Keypad4
	Keypad5
	Keypad6
	Keypad7
	Keypad8
	Keypad9
	Keypad0
	KeypadPeriod
	NonUSBackslash
	Application
	Power
	KeypadEqual
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24
	Execute
	Help
	Menu
	Select
	Stop
	Again
	Undo
	Cut
	Copy
	Paste
	Find
	Mute
	VolumeUp
	VolumeDown
	LockingCapsLock
	LockingNumLock
	LockingScrollLock
	KeypadComma
	KeypadEqualSign
	International1
	International2
	International3
	International4
	International5
	International6
	International7
	International8
	International9
	Lang1
	Lang2
	Lang3
	Lang4
	Lang5
	Lang6
	Lang7
	Lang8
	Lang9
	AlternateErase
	SysReq
	Cancel
	Clear
	Prior
	Return
	Separator
	Out
	Oper
	ClearAgain
	CrSel
	ExSel
)

// Modifier keys.
const (
	LeftControl Key = iota + 0x00e0
	LeftShift
	LeftAlt
	LeftGui
	RightControl
	RightShift
	RightAlt
	RightGui
)

// Media keys.
const (
	MediaPlay            Key = 0x10b0
	MediaPause           Key = 0x10b1
	MediaRecord          Key = 0x10b2
	MediaNextTrack       Key = 0x10b5
	MediaPrevTrack       Key = 0x10b6
	MediaStop            Key = 0x10b7
	MediaRandomPlay      Key = 0x10b9
	MediaRepeat          Key = 0x10bc
	MediaPlayPause       Key = 0x10cd
	MediaMute            Key = 0x10e2
	MediaVolumeIncrement Key = 0x10e9
	MediaVolumeDecrement Key = 0x10ea
)

// Modified keys, composed with LeftShift.
const (
	Exclamation       Key = 0xe11e
	At                Key = 0xe11f
	Hash              Key = 0xe120
	Dollar            Key = 0xe121
	Percent           Key = 0xe122
	Circumflex        Key = 0xe123
	Ampersand         Key = 0xe124
	Asterisk          Key = 0xe125
	LeftParenthesis   Key = 0xe126
	RightParenthesis  Key = 0xe127
	LowLine           Key = 0xe12d
	Plus              Key = 0xe12e
	LeftCurlyBracket  Key = 0xe12f
	RightCurlyBracket Key = 0xe130
	VerticalBar       Key = 0xe131
	Colon             Key = 0xe133
	Quotation         Key = 0xe134
	Tilde             Key = 0xe135
	LessThan          Key = 0xe136
	GreaterThan       Key = 0xe137
	Question          Key = 0xe138
)

// IsNoop returns true for None and Transparent.
func (k Key) IsNoop() bool {
	return k <= Transparent
}

// IsModifierKey returns true for bare modifiers.
func (k Key) IsModifierKey() bool {
	return k >= LeftControl && k <= RightGui
}

// IsModifiedKey returns true for keys composed with a modifier.
func (k Key) IsModifiedKey() bool {
	hi, lo := k>>8, k&0xff
	return hi >= 0xe0 && hi <= 0xe7 && lo >= 0x04 && lo < 0xe0
}

// IsKeyboardKey returns true for keys in the plain keyboard usage range.
func (k Key) IsKeyboardKey() bool {
	return k >= A && k < LeftControl
}

// IsMediaKey returns true for consumer control keys.
func (k Key) IsMediaKey() bool {
	return k >= 0x1000 && k < 0x2000
}

// KeyCode returns the HID keyboard usage of keyboard and modified keys.
func (k Key) KeyCode() (byte, bool) {
	if k.IsKeyboardKey() || k.IsModifiedKey() {
		return byte(k & 0xff), true
	}
	return 0, false
}

// ModifierFlag returns the modifier bit contributed to a keyboard report.
func (k Key) ModifierFlag() byte {
	if k.IsModifierKey() {
		return 1 << (k - LeftControl)
	}
	if k.IsModifiedKey() {
		return 1 << ((k >> 8) - 0xe0)
	}
	return 0
}

// MediaUsageID returns the consumer usage of a media key.
func (k Key) MediaUsageID() uint16 {
	if k.IsMediaKey() {
		return uint16(k) & 0x0fff
	}
	return 0
}

const keyChars = `abcdefghijklmnopqrstuvwxyz1234567890REBT -=[]\#;'` + "`" +
	`,./ FFFFFFFFFFFF              /*-+R1234567890.\  =FFFFFFFFFFFF                 ,=IIIIIIIIILLLLLLLLLB    E      `

// Char returns a single character for compact displays.
func (k Key) Char() byte {
	if k >= A && k <= ExSel {
		return keyChars[k-A]
	}
	return ' '
}

var (
	keyboardKeyNames = []string{
		"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
		"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "0",
		"Enter", "Escape", "Delete", "Tab", "Space", "Minus", "Equal",
		"LeftBracket", "RightBracket", "Backslash", "NonUSHash", "Semicolon",
		"Apostrophe", "Grave", "Comma", "Period", "Slash", "CapsLock",
		"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
		"PrintScreen", "ScrollLock", "Pause", "Insert", "Home", "PageUp",
		"DeleteForward", "End", "PageDown", "Right", "Left", "Down", "Up",
		"KeypadNumLock", "KeypadSlash", "KeypadAsterisk", "KeypadMinus",
		"KeypadPlus", "KeypadEnter", "Keypad1", "Keypad2", "Keypad3", "Keypad4",
		"Keypad5", "Keypad6", "Keypad7", "Keypad8", "Keypad9", "Keypad0",
		"KeypadPeriod", "NonUSBackslash", "Application", "Power", "KeypadEqual",
		"F13", "F14", "F15", "F16", "F17", "F18", "F19", "F20", "F21", "F22", "F23", "F24",
		"Execute", "Help", "Menu", "Select", "Stop", "Again", "Undo", "Cut",
		"Copy", "Paste", "Find", "Mute", "VolumeUp", "VolumeDown",
		"LockingCapsLock", "LockingNumLock", "LockingScrollLock",
		"KeypadComma", "KeypadEqualSign",
		"International1", "International2", "International3", "International4",
		"International5", "International6", "International7", "International8",
		"International9",
		"Lang1", "Lang2", "Lang3", "Lang4", "Lang5", "Lang6", "Lang7", "Lang8", "Lang9",
		"AlternateErase", "SysReq", "Cancel", "Clear", "Prior", "Return",
		"Separator", "Out", "Oper", "ClearAgain", "CrSel", "ExSel",
	}

	keyNames = map[Key]string{
		None:                 "None",
		Transparent:          "Transparent",
		LeftControl:          "LeftControl",
		LeftShift:            "LeftShift",
		LeftAlt:              "LeftAlt",
		LeftGui:              "LeftGui",
		RightControl:         "RightControl",
		RightShift:           "RightShift",
		RightAlt:             "RightAlt",
		RightGui:             "RightGui",
		MediaPlay:            "MediaPlay",
		MediaPause:           "MediaPause",
		MediaRecord:          "MediaRecord",
		MediaNextTrack:       "MediaNextTrack",
		MediaPrevTrack:       "MediaPrevTrack",
		MediaStop:            "MediaStop",
		MediaRandomPlay:      "MediaRandomPlay",
		MediaRepeat:          "MediaRepeat",
		MediaPlayPause:       "MediaPlayPause",
		MediaMute:            "MediaMute",
		MediaVolumeIncrement: "MediaVolumeIncrement",
		MediaVolumeDecrement: "MediaVolumeDecrement",
		Exclamation:          "Exclamation",
		At:                   "At",
		Hash:                 "Hash",
		Dollar:               "Dollar",
		Percent:              "Percent",
		Circumflex:           "Circumflex",
		Ampersand:            "Ampersand",
		Asterisk:             "Asterisk",
		LeftParenthesis:      "LeftParenthesis",
		RightParenthesis:     "RightParenthesis",
		LowLine:              "LowLine",
		Plus:                 "Plus",
		LeftCurlyBracket:     "LeftCurlyBracket",
		RightCurlyBracket:    "RightCurlyBracket",
		VerticalBar:          "VerticalBar",
		Colon:                "Colon",
		Quotation:            "Quotation",
		Tilde:                "Tilde",
		LessThan:             "LessThan",
		GreaterThan:          "GreaterThan",
		Question:             "Question",
	}

	keysByName map[string]Key
)

func init() {
	for n, name := range keyboardKeyNames {
		keyNames[A+Key(n)] = name
	}
	keysByName = make(map[string]Key, len(keyNames))
	for key, name := range keyNames {
		keysByName[strings.ToLower(name)] = key
	}
}

// String implements fmt.Stringer.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(0x%04x)", uint16(k))
}

// ParseKey parses a key from its name, case insensitive.
// Numeric forms like 0x04 are accepted as well.
func ParseKey(name string) (Key, error) {
	if key, ok := keysByName[strings.ToLower(name)]; ok {
		return key, nil
	}
	if strings.HasPrefix(name, "0x") || strings.HasPrefix(name, "0X") {
		var val uint16
		if _, err := fmt.Sscanf(name[2:], "%x", &val); err == nil {
			return Key(val), nil
		}
	}
	return None, fmt.Errorf("unknown key %q", name)
}
