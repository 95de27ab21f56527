// Package script lit et écrit les fichiers de transcript multilingues
// ({title, source_path, source_language, data: [...]}) produits par la
// chaîne STT / traduction. YAML et JSON sont acceptés en lecture.
package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/patrickprogramme/dubsync/internal/fsutil"
	"github.com/patrickprogramme/dubsync/pkg/model"
	"gopkg.in/yaml.v3"
)

// clés réservées d'une ligne ; toutes les autres sont des colonnes de langue
const (
	keyStart  = "start"
	keyEnd    = "end"
	keySource = "source"
)

// rawScript reflète le fichier tel qu'il est sur disque.
type rawScript struct {
	Title          string           `yaml:"title" json:"title"`
	SourcePath     string           `yaml:"source_path" json:"source_path"`
	SourceLanguage string           `yaml:"source_language" json:"source_language"`
	Data           []map[string]any `yaml:"data" json:"data"`
}

// Load lit un fichier de script (YAML ou JSON) et retourne un Script validé.
func Load(path string) (*model.Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	s, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Parse décode un script depuis des octets YAML ou JSON (yaml.v3 lit les deux).
func Parse(b []byte) (*model.Script, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, fmt.Errorf("Parse: empty input")
	}
	var raw rawScript
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("Parse: decode error: %w", err)
	}
	return raw.toScript()
}

func (raw rawScript) toScript() (*model.Script, error) {
	srcLang := model.NormalizeLanguage(raw.SourceLanguage)
	segments := make([]model.Segment, 0, len(raw.Data))

	for i, row := range raw.Data {
		start, err := millisField(row, keyStart)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		end, err := millisField(row, keyEnd)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		seg := model.Segment{Start: start, End: end}

		for k, v := range row {
			switch k {
			case keyStart, keyEnd:
				continue
			case keySource:
				seg.Source = textValue(v)
				continue
			}
			lang := model.NormalizeLanguage(k)
			if lang == srcLang {
				// ancien format : le texte source est rangé sous le code de la langue source
				if seg.Source == "" {
					seg.Source = textValue(v)
				}
				continue
			}
			if seg.Translations == nil {
				seg.Translations = make(map[model.Language]string)
			}
			seg.Translations[lang] = textValue(v)
		}
		segments = append(segments, seg)
	}

	return model.NewScript(raw.Title, raw.SourcePath, srcLang, segments)
}

// millisField lit un offset entier en ms. Les nombres flottants sont arrondis.
func millisField(row map[string]any, key string) (model.Millis, error) {
	v, ok := row[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	switch n := v.(type) {
	case int:
		return model.Millis(n), nil
	case int64:
		return model.Millis(n), nil
	case uint64:
		return model.Millis(n), nil
	case float64:
		return model.Millis(math.Round(n)), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q: %w", key, err)
		}
		return model.Millis(math.Round(f)), nil
	default:
		return 0, fmt.Errorf("%q: unsupported value %v", key, v)
	}
}

func textValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Save écrit le script de façon atomique. L'extension choisit l'encodage :
// .json -> JSON indenté, sinon YAML (clés dans l'ordre start, end, source, langues).
func Save(path string, s *model.Script) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = encodeJSON(s)
	} else {
		data, err = encodeYAML(s)
	}
	if err != nil {
		return fmt.Errorf("encode script: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write script %s: %w", path, err)
	}
	return nil
}

func sortedLanguages(s *model.Script) []model.Language {
	langs := s.Languages()
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

func encodeJSON(s *model.Script) ([]byte, error) {
	raw := rawScript{
		Title:          s.Title,
		SourcePath:     s.SourcePath,
		SourceLanguage: string(s.SourceLanguage),
	}
	langs := sortedLanguages(s)
	for i, seg := range s.Segments() {
		row := map[string]any{
			keyStart:  int64(seg.Start),
			keyEnd:    int64(seg.End),
			keySource: seg.Source,
		}
		for _, l := range langs {
			row[string(l)], _ = s.Text(i, l)
		}
		raw.Data = append(raw.Data, row)
	}
	return json.MarshalIndent(raw, "", "    ")
}

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func str(v string) *yaml.Node { return scalar("!!str", v) }

func encodeYAML(s *model.Script) ([]byte, error) {
	langs := sortedLanguages(s)

	rows := &yaml.Node{Kind: yaml.SequenceNode}
	for i, seg := range s.Segments() {
		row := &yaml.Node{Kind: yaml.MappingNode}
		row.Content = append(row.Content,
			str(keyStart), scalar("!!int", strconv.FormatInt(int64(seg.Start), 10)),
			str(keyEnd), scalar("!!int", strconv.FormatInt(int64(seg.End), 10)),
			str(keySource), str(seg.Source),
		)
		for _, l := range langs {
			text, _ := s.Text(i, l)
			row.Content = append(row.Content, str(string(l)), str(text))
		}
		rows.Content = append(rows.Content, row)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode}
	doc.Content = append(doc.Content,
		str("title"), str(s.Title),
		str("source_path"), str(s.SourcePath),
		str("source_language"), str(string(s.SourceLanguage)),
		str("data"), rows,
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
