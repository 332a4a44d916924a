package i18n

import (
	"strings"
)

// Translator retrieves localized messages for validation codes.
// data provides optional values substituted into "{name}" placeholders (for
// example "min" or "max").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "invalid":
			msg = "値が不正です"
		case "required":
			msg = "必須項目です"
		case "pattern":
			msg = "形式が正しくありません"
		case "too_short":
			msg = "{min}文字以上で入力してください"
		case "too_long":
			msg = "{max}文字以内で入力してください"
		case "not_all":
			msg = "すべての項目を完了してください"
		}
	default: // "en"
		switch code {
		case "invalid":
			msg = "invalid value"
		case "required":
			msg = "required"
		case "pattern":
			msg = "does not match the expected format"
		case "too_short":
			msg = "must be at least {min} characters"
		case "too_long":
			msg = "must be at most {max} characters"
		case "not_all":
			msg = "every item must be completed"
		}
	}
	if msg == "" {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
