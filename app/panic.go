package app

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"keyball/firmware/layout"
	"keyball/firmware/status"
	"keyball/hal"
	"keyball/kernel"
)

// screenCols is the character width of the 128-pixel OLED.
const screenCols = 21

type panicTarget struct {
	h  hal.HAL
	st *status.State
}

var (
	panicMu      sync.Mutex
	panicTargets = map[string]panicTarget{}
)

// installPanicHandler routes a panic in any task of hand to that half's log
// and display. Task names start with the hand.
func installPanicHandler(hand layout.Hand, h hal.HAL, st *status.State) {
	panicMu.Lock()
	panicTargets[hand.String()] = panicTarget{h: h, st: st}
	panicMu.Unlock()
	kernel.SetPanicHandler(handlePanic)
}

func handlePanic(info kernel.PanicInfo) {
	half, _, _ := strings.Cut(info.Task, "/")
	panicMu.Lock()
	t, ok := panicTargets[half]
	panicMu.Unlock()
	if !ok {
		halt()
		return
	}

	if l := t.h.Logger(); l != nil {
		l.WriteLineString(fmt.Sprintf("panic: task=%s value=%v", info.Task, info.Value))
		for _, line := range strings.Split(string(info.Stack), "\n") {
			if line != "" {
				l.WriteLineString(line)
			}
		}
	}

	if d := t.h.Display(); d != nil {
		lines := []string{"PANIC " + info.Task}
		rest := fmt.Sprint(info.Value)
		for len(lines) < 3 && rest != "" {
			var chunk string
			chunk, rest = takeRunes(rest, screenCols)
			lines = append(lines, chunk)
			rest = strings.TrimLeft(rest, " ")
		}
		_ = t.st.TryDraw(d, lines...)
	}
	halt()
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
