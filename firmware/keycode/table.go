package keycode

import "strconv"

// HID keyboard usage ids used by the keymap.
const (
	KeyA            Key = 0x04
	KeyZ            Key = 0x1D
	Key1            Key = 0x1E
	Key0            Key = 0x27
	KeyEnter        Key = 0x28
	KeyEscape       Key = 0x29
	KeyBackspace    Key = 0x2A
	KeyTab          Key = 0x2B
	KeySpace        Key = 0x2C
	KeyMinus        Key = 0x2D
	KeyEqual        Key = 0x2E
	KeyLeftBracket  Key = 0x2F
	KeyRightBracket Key = 0x30
	KeyBackslash    Key = 0x31
	KeyNonUSHash    Key = 0x32
	KeySemicolon    Key = 0x33
	KeyQuote        Key = 0x34
	KeyGrave        Key = 0x35
	KeyComma        Key = 0x36
	KeyDot          Key = 0x37
	KeySlash        Key = 0x38
	KeyCapsLock     Key = 0x39
	KeyF1           Key = 0x3A
	KeyF12          Key = 0x45
	KeyPrintScreen  Key = 0x46
	KeyScrollLock   Key = 0x47
	KeyPause        Key = 0x48
	KeyInsert       Key = 0x49
	KeyHome         Key = 0x4A
	KeyPageUp       Key = 0x4B
	KeyDelete       Key = 0x4C
	KeyEnd          Key = 0x4D
	KeyPageDown     Key = 0x4E
	KeyRight        Key = 0x4F
	KeyLeft         Key = 0x50
	KeyDown         Key = 0x51
	KeyUp           Key = 0x52
	KeyInt1         Key = 0x87 // JIS ro
	KeyInt2         Key = 0x88 // JIS katakana/hiragana
	KeyInt3         Key = 0x89 // JIS yen
	KeyLang1        Key = 0x90
	KeyLang2        Key = 0x91
)

// Entry maps a name to a code.
type Entry struct {
	Name string
	Code KeyCode
}

// fixed is the hand-written part of the table. Letters, digits and function
// keys are generated in buildTable.
var fixed = []Entry{
	{"ENTER", KeyOf(KeyEnter)},
	{"ESC", KeyOf(KeyEscape)},
	{"BS", KeyOf(KeyBackspace)},
	{"TAB", KeyOf(KeyTab)},
	{"SPACE", KeyOf(KeySpace)},
	{"MINUS", KeyOf(KeyMinus)},
	{"EQUAL", KeyOf(KeyEqual)},
	{"LBRC", KeyOf(KeyLeftBracket)},
	{"RBRC", KeyOf(KeyRightBracket)},
	{"BSLSH", KeyOf(KeyBackslash)},
	{"NUHS", KeyOf(KeyNonUSHash)},
	{"SEMI", KeyOf(KeySemicolon)},
	{"QUOTE", KeyOf(KeyQuote)},
	{"GRAVE", KeyOf(KeyGrave)},
	{"COMM", KeyOf(KeyComma)},
	{"DOT", KeyOf(KeyDot)},
	{"SLASH", KeyOf(KeySlash)},
	{"CAPS", KeyOf(KeyCapsLock)},
	{"PRTSC", KeyOf(KeyPrintScreen)},
	{"SCRLK", KeyOf(KeyScrollLock)},
	{"PAUSE", KeyOf(KeyPause)},
	{"INS", KeyOf(KeyInsert)},
	{"HOME", KeyOf(KeyHome)},
	{"PGUP", KeyOf(KeyPageUp)},
	{"DEL", KeyOf(KeyDelete)},
	{"END", KeyOf(KeyEnd)},
	{"PGDN", KeyOf(KeyPageDown)},
	{"RIGHT", KeyOf(KeyRight)},
	{"LEFT", KeyOf(KeyLeft)},
	{"DOWN", KeyOf(KeyDown)},
	{"UP", KeyOf(KeyUp)},

	// JIS layout names for the same usages.
	{"JZNHN", KeyOf(KeyGrave)},
	{"JCARET", KeyOf(KeyEqual)},
	{"JAT", KeyOf(KeyLeftBracket)},
	{"JLBRC", KeyOf(KeyRightBracket)},
	{"JRBRC", KeyOf(KeyNonUSHash)},
	{"JCOLN", KeyOf(KeyQuote)},
	{"JBSLSH", KeyOf(KeyInt1)},
	{"JKANA", KeyOf(KeyInt2)},
	{"JYEN", KeyOf(KeyInt3)},
	{"HENK", KeyOf(KeyLang1)},
	{"MHEN", KeyOf(KeyLang2)},

	{"L_CTRL", ModOf(LeftCtrl)},
	{"L_SHFT", ModOf(LeftShift)},
	{"L_ALT", ModOf(LeftAlt)},
	{"L_GUI", ModOf(LeftGui)},
	{"R_CTRL", ModOf(RightCtrl)},
	{"R_SHFT", ModOf(RightShift)},
	{"R_ALT", ModOf(RightAlt)},
	{"R_GUI", ModOf(RightGui)},

	{"M_L", ButtonOf(MouseLeft)},
	{"M_R", ButtonOf(MouseRight)},
	{"M_MID", ButtonOf(MouseMiddle)},
	{"M_BCK", ButtonOf(MouseBack)},
	{"M_FWD", ButtonOf(MouseForward)},

	{"PLAY", MediaOf(MediaPlay)},
	{"PAUSE_M", MediaOf(MediaPause)},
	{"REC", MediaOf(MediaRecord)},
	{"NEXT", MediaOf(MediaNextTrack)},
	{"PREV", MediaOf(MediaPrevTrack)},
	{"STOP", MediaOf(MediaStop)},
	{"SHUF", MediaOf(MediaRandomPlay)},
	{"RPT", MediaOf(MediaRepeat)},
	{"PLPS", MediaOf(MediaPlayPause)},
	{"MUTE", MediaOf(MediaMute)},
	{"VOLUP", MediaOf(MediaVolumeIncrement)},
	{"VOLDN", MediaOf(MediaVolumeDecrement)},

	{"MO_SCRL", SpecialOf(ScrollMode)},
}

type index struct {
	entries []Entry
	byName  map[string]KeyCode
	byCode  map[KeyCode]string
}

var table = buildTable()

func buildTable() *index {
	var entries []Entry
	for k := KeyA; k <= KeyZ; k++ {
		entries = append(entries, Entry{Name: string(rune('A' + int(k-KeyA))), Code: KeyOf(k)})
	}
	for k := Key1; k <= Key0; k++ {
		d := (int(k-Key1) + 1) % 10
		entries = append(entries, Entry{Name: "D" + strconv.Itoa(d), Code: KeyOf(k)})
	}
	for k := KeyF1; k <= KeyF12; k++ {
		entries = append(entries, Entry{Name: "F" + strconv.Itoa(int(k-KeyF1)+1), Code: KeyOf(k)})
	}
	entries = append(entries, fixed...)

	idx := &index{
		entries: entries,
		byName:  make(map[string]KeyCode, len(entries)),
		byCode:  make(map[KeyCode]string, len(entries)),
	}
	for _, e := range entries {
		idx.byName[e.Name] = e.Code
		// first name wins so the generic names are preferred over JIS aliases.
		if _, ok := idx.byCode[e.Code]; !ok {
			idx.byCode[e.Code] = e.Name
		}
	}
	return idx
}

// Lookup returns the code registered under name.
func Lookup(name string) (KeyCode, bool) {
	kc, ok := table.byName[name]
	return kc, ok
}

// Name returns the table name of kc.
func Name(kc KeyCode) (string, bool) {
	name, ok := table.byCode[kc]
	return name, ok
}

// Entries returns a copy of the whole table.
func Entries() []Entry {
	out := make([]Entry, len(table.entries))
	copy(out, table.entries)
	return out
}
