package controller

import (
	"github.com/gdamore/tcell/v2"
)

// runeKeyBase moves printable keys above every tcell.Key constant so that plain
// letters can share the events map with special keys.
const runeKeyBase tcell.Key = 1024

func runeKey(r rune) tcell.Key {
	return runeKeyBase + tcell.Key(r)
}

// Keys used by the board. Uppercase letters are the shifted variants.
var (
	KeyC      = runeKey('c')
	KeyD      = runeKey('d')
	KeyE      = runeKey('e')
	KeyF      = runeKey('f')
	KeyI      = runeKey('i')
	KeyN      = runeKey('n')
	KeyP      = runeKey('p')
	KeyQ      = runeKey('q')
	KeyR      = runeKey('r')
	KeySpace  = runeKey(' ')
	KeySlash  = runeKey('/')
	KeyShiftI = runeKey('I')
	KeyShiftL = runeKey('L')
)

// AsKey returns the events-map key for evt.
func AsKey(evt *tcell.EventKey) tcell.Key {
	if evt.Key() == tcell.KeyRune {
		return runeKey(evt.Rune())
	}

	return evt.Key()
}

// keyName is the label shown in the shortcut header.
func keyName(key tcell.Key) string {
	if key >= runeKeyBase {
		r := rune(key - runeKeyBase)
		if r == ' ' {
			return "Space"
		}

		return string(r)
	}

	if name, ok := tcell.KeyNames[key]; ok {
		return name
	}

	return "?"
}
