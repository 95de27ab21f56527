package model

import (
	"fmt"
	"sort"
	"strings"
)

// Segment représente une ligne du transcript : un intervalle [Start, End) et son texte.
type Segment struct {
	Start        Millis              // début (ms depuis le début de la vidéo)
	End          Millis              // fin exclusive
	Source       string              // texte dans la langue source
	Translations map[Language]string // une entrée par langue cible, jamais supprimée
}

func (s Segment) Duration() Millis {
	return s.End - s.Start
}

func (s Segment) clone() Segment {
	out := s
	if s.Translations != nil {
		out.Translations = make(map[Language]string, len(s.Translations))
		for k, v := range s.Translations {
			out.Translations[k] = v
		}
	}
	return out
}

// Script est la timeline partagée par toutes les étapes : une suite ordonnée de
// segments + l'identité du run. Les invariants sont vérifiés à la construction
// et après chaque mutation ; les segments ne sont jamais exposés directement.
type Script struct {
	Title          string
	SourcePath     string
	SourceLanguage Language

	segments  []Segment
	languages []Language // langues cibles, dans l'ordre d'ajout
}

// NewScript construit un Script validé. Les segments sont copiés.
func NewScript(title, sourcePath string, sourceLang Language, segments []Segment) (*Script, error) {
	if err := ValidateSegments(segments); err != nil {
		return nil, err
	}
	s := &Script{
		Title:          strings.TrimSpace(title),
		SourcePath:     sourcePath,
		SourceLanguage: sourceLang,
		segments:       make([]Segment, len(segments)),
	}
	counts := map[Language]int{}
	for i, seg := range segments {
		s.segments[i] = seg.clone()
		for lang := range seg.Translations {
			counts[lang]++
		}
	}
	for lang, n := range counts {
		// une colonne de langue couvre toutes les lignes ou n'existe pas
		if n != len(segments) {
			return nil, fmt.Errorf("%w: language %s present on %d of %d segments", ErrInvalidTranslation, lang, n, len(segments))
		}
		if lang == sourceLang {
			return nil, fmt.Errorf("%w: %s est la langue source", ErrInvalidTranslation, lang)
		}
		s.languages = append(s.languages, lang)
	}
	sort.Slice(s.languages, func(i, j int) bool { return s.languages[i] < s.languages[j] })
	return s, nil
}

// ValidateSegments vérifie start < end, le tri par start et l'absence de chevauchement.
func ValidateSegments(segments []Segment) error {
	for i, seg := range segments {
		if seg.Start < 0 {
			return fmt.Errorf("%w: segment %d: start %d < 0", ErrInvalidSegmentOrder, i, seg.Start)
		}
		if seg.Start >= seg.End {
			return fmt.Errorf("%w: segment %d: start %d >= end %d", ErrInvalidSegmentOrder, i, seg.Start, seg.End)
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if seg.Start < prev.Start {
			return fmt.Errorf("%w: segment %d: start %d before previous start %d", ErrInvalidSegmentOrder, i, seg.Start, prev.Start)
		}
		if prev.End > seg.Start {
			return fmt.Errorf("%w: segment %d overlaps segment %d (%d > %d)", ErrInvalidSegmentOrder, i, i-1, prev.End, seg.Start)
		}
	}
	return nil
}

// Validate revérifie les invariants du script complet.
func (s *Script) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: script nil", ErrInvalidSegmentOrder)
	}
	return ValidateSegments(s.segments)
}

func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.segments)
}

// Segments retourne une copie des segments.
func (s *Script) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	for i, seg := range s.segments {
		out[i] = seg.clone()
	}
	return out
}

// Segment retourne une copie du segment i.
func (s *Script) Segment(i int) (Segment, bool) {
	if i < 0 || i >= len(s.segments) {
		return Segment{}, false
	}
	return s.segments[i].clone(), true
}

// Languages retourne les langues cibles disponibles.
func (s *Script) Languages() []Language {
	return append([]Language(nil), s.languages...)
}

// HasLanguage indique si le script contient la langue donnée (source incluse).
func (s *Script) HasLanguage(lang Language) bool {
	if lang == s.SourceLanguage {
		return true
	}
	for _, l := range s.languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Text retourne le texte du segment i dans la langue demandée.
func (s *Script) Text(i int, lang Language) (string, bool) {
	if i < 0 || i >= len(s.segments) {
		return "", false
	}
	if lang == s.SourceLanguage {
		return s.segments[i].Source, true
	}
	t, ok := s.segments[i].Translations[lang]
	return t, ok
}

// AddTranslation ajoute une colonne de langue : exactement une traduction par
// segment, dans l'ordre du script. Une langue déjà présente est refusée.
func (s *Script) AddTranslation(lang Language, texts []string) error {
	if lang == "" {
		return fmt.Errorf("%w: langue vide", ErrInvalidTranslation)
	}
	if lang == s.SourceLanguage {
		return fmt.Errorf("%w: %s est la langue source", ErrInvalidTranslation, lang)
	}
	if s.HasLanguage(lang) {
		return fmt.Errorf("%w: langue %s déjà présente", ErrInvalidTranslation, lang)
	}
	if len(texts) != len(s.segments) {
		return fmt.Errorf("%w: %d traductions pour %d segments", ErrInvalidTranslation, len(texts), len(s.segments))
	}
	for i := range s.segments {
		if s.segments[i].Translations == nil {
			s.segments[i].Translations = make(map[Language]string, 1)
		}
		s.segments[i].Translations[lang] = texts[i]
	}
	s.languages = append(s.languages, lang)
	return nil
}

func (s *Script) String() string {
	return fmt.Sprintf("Script[Title=%q, Source=%s, Lang=%s, Segments=%d, Languages=%v]",
		s.Title, s.SourcePath, s.SourceLanguage, len(s.segments), s.languages)
}
