package subtitle

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// Script names the writing system of a piece of dialogue.
type Script string

const (
	ScriptUnknown Script = ""
	ScriptLatin   Script = "latin"
	ScriptHangul  Script = "hangul"
	ScriptOther   Script = "other"
)

// DetectScript classifies text by its dominant script.
func DetectScript(text string) Script {
	table := whatlanggo.DetectScript(text)
	switch table {
	case nil:
		return ScriptUnknown
	case unicode.Latin:
		return ScriptLatin
	case unicode.Hangul:
		return ScriptHangul
	default:
		return ScriptOther
	}
}
