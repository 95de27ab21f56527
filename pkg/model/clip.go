package model

import "fmt"

// ClipKind distingue les clips portant une ligne du transcript des clips de remplissage.
type ClipKind string

const (
	ClipContent ClipKind = "content"
	ClipFiller  ClipKind = "filler"
)

// Clip est le descripteur émis par le Segmenter et consommé par le Merger :
// un index d'émission, un intervalle et les artefacts matérialisés
// (chemins relatifs à la racine du run).
type Clip struct {
	Index   int      `yaml:"index"`
	Kind    ClipKind `yaml:"kind"`
	Start   Millis   `yaml:"start"`
	End     Millis   `yaml:"end"`
	Segment int      `yaml:"segment"` // index dans le Script, -1 pour un filler

	Video      string `yaml:"video,omitempty"`
	Audio      string `yaml:"audio,omitempty"`
	Instrument string `yaml:"instrument,omitempty"`
}

func (c Clip) Duration() Millis {
	return c.End - c.Start
}

func (c Clip) IsFiller() bool {
	return c.Kind == ClipFiller
}

func (c Clip) String() string {
	return fmt.Sprintf("clip %d (%s): %s-%s", c.Index, c.Kind, c.Start.TimestampHHMMSS(), c.End.TimestampHHMMSS())
}

// ClipSet regroupe la séquence ordonnée des clips d'un run et les métadonnées
// nécessaires au merge. C'est le contenu du manifeste écrit par le Segmenter.
type ClipSet struct {
	Title          string   `yaml:"title"`
	SourcePath     string   `yaml:"source_path"`
	SourceLanguage Language `yaml:"source_language"`
	Total          Millis   `yaml:"total_ms"`
	FPS            float64  `yaml:"fps"`
	SampleRate     int      `yaml:"sample_rate"`
	Clips          []Clip   `yaml:"clips"`
}

// Covered retourne la somme des durées des clips.
func (cs ClipSet) Covered() Millis {
	var total Millis
	for _, c := range cs.Clips {
		total += c.Duration()
	}
	return total
}

// ContentCount retourne le nombre de clips portant du texte.
func (cs ClipSet) ContentCount() int {
	n := 0
	for _, c := range cs.Clips {
		if !c.IsFiller() {
			n++
		}
	}
	return n
}
