package keycode

import "testing"

func TestLookupGenerated(t *testing.T) {
	tests := []struct {
		name string
		want KeyCode
	}{
		{name: "A", want: KeyOf(0x04)},
		{name: "Z", want: KeyOf(0x1D)},
		{name: "D1", want: KeyOf(0x1E)},
		{name: "D0", want: KeyOf(0x27)},
		{name: "F1", want: KeyOf(0x3A)},
		{name: "F12", want: KeyOf(0x45)},
		{name: "ENTER", want: KeyOf(KeyEnter)},
		{name: "L_SHFT", want: ModOf(LeftShift)},
		{name: "M_MID", want: ButtonOf(MouseMiddle)},
		{name: "VOLUP", want: MediaOf(MediaVolumeIncrement)},
		{name: "MO_SCRL", want: SpecialOf(ScrollMode)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(tt.name)
			if !ok {
				t.Fatalf("Lookup(%q) ok = false, want true", tt.name)
			}
			if got != tt.want {
				t.Fatalf("Lookup(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestTableRoundTrip(t *testing.T) {
	for _, e := range Entries() {
		got, ok := Lookup(e.Name)
		if !ok || got != e.Code {
			t.Fatalf("Lookup(%q) = %v, %v; want %v, true", e.Name, got, ok, e.Code)
		}
		name, ok := Name(e.Code)
		if !ok {
			t.Fatalf("Name(%v) ok = false, want true", e.Code)
		}
		if back, _ := Lookup(name); back != e.Code {
			t.Fatalf("Lookup(Name(%v)) = %v, want %v", e.Code, back, e.Code)
		}
	}
}

func TestTableNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range Entries() {
		if seen[e.Name] {
			t.Fatalf("duplicate table name %q", e.Name)
		}
		seen[e.Name] = true
	}
}

func TestNamePrefersGenericAlias(t *testing.T) {
	name, ok := Name(KeyOf(KeyGrave))
	if !ok || name != "GRAVE" {
		t.Fatalf("Name(GRAVE) = %q, %v; want %q, true", name, ok, "GRAVE")
	}
}

func TestLayerCodes(t *testing.T) {
	op, n := MoveTo(2).Layer()
	if op != Move || n != 2 {
		t.Fatalf("MoveTo(2).Layer() = %v, %d; want Move, 2", op, n)
	}
	op, n = ToggleOf(3).Layer()
	if op != Toggle || n != 3 {
		t.Fatalf("ToggleOf(3).Layer() = %v, %d; want Toggle, 3", op, n)
	}
	if got := MoveTo(2).String(); got != "MV(2)" {
		t.Fatalf("MoveTo(2).String() = %q, want %q", got, "MV(2)")
	}
	if got := ToggleOf(1).String(); got != "TG(1)" {
		t.Fatalf("ToggleOf(1).String() = %q, want %q", got, "TG(1)")
	}
}

func TestWithModifier(t *testing.T) {
	kc := WithMod(LeftShift, Key1)
	if kc.Kind() != KindWithModifier || kc.Key() != Key1 || kc.Modifier() != LeftShift {
		t.Fatalf("WithMod() = %+v, want shift+1", kc)
	}
	var zero KeyCode
	if zero.Kind() != KindNone {
		t.Fatalf("zero KeyCode Kind() = %v, want %v", zero.Kind(), KindNone)
	}
}
