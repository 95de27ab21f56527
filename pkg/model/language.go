package model

import "strings"

// Language est un code langue canonique (KO, EN, JA, CN...).
type Language string

const (
	LangKorean   Language = "KO"
	LangEnglish  Language = "EN"
	LangJapanese Language = "JA"
	LangChinese  Language = "CN"
)

// alias acceptés en entrée (sorties STT, fichiers de script, flags CLI).
var languageAliases = map[string]Language{
	"ko":       LangKorean,
	"korean":   LangKorean,
	"ko-kr":    LangKorean,
	"ko_kr":    LangKorean,
	"en":       LangEnglish,
	"english":  LangEnglish,
	"en-us":    LangEnglish,
	"ja":       LangJapanese,
	"jp":       LangJapanese,
	"japanese": LangJapanese,
	"cn":       LangChinese,
	"zh":       LangChinese,
	"zh-cn":    LangChinese,
	"chinese":  LangChinese,
}

// NormalizeLanguage ramène un code ou un alias vers sa forme canonique.
// Un code inconnu est conservé, en majuscules. Vide -> "".
func NormalizeLanguage(s string) Language {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if l, ok := languageAliases[strings.ToLower(s)]; ok {
		return l
	}
	return Language(strings.ToUpper(s))
}

func (l Language) String() string {
	return string(l)
}
