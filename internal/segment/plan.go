package segment

import (
	"fmt"
	"math"

	"github.com/patrickprogramme/dubsync/pkg/model"
)

// Warning signale un segment corrigé ou ignoré pendant la planification.
type Warning struct {
	Segment int // index dans le Script
	Err     error
	Message string
}

func (w Warning) Error() string {
	return fmt.Sprintf("segment %d: %s: %v", w.Segment, w.Message, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// Plan est la séquence de clips qui couvre exactement [0, Total).
type Plan struct {
	Total    model.Millis
	Clips    []model.Clip
	Warnings []Warning
}

// PlanClips calcule la suite ordonnée de clips pour une timeline de durée total :
// un clip par segment, et un clip de remplissage pour chaque intervalle non transcrit.
// Les index de clip suivent l'ordre d'émission, remplissages compris.
// Fonction pure : aucun accès disque.
func PlanClips(s *model.Script, total model.Millis) (Plan, error) {
	if err := s.Validate(); err != nil {
		return Plan{}, err
	}
	if total <= 0 {
		return Plan{}, fmt.Errorf("%w: total duration %s", model.ErrInvalidDuration, total)
	}

	p := Plan{Total: total}
	emit := func(kind model.ClipKind, start, end model.Millis, seg int) {
		p.Clips = append(p.Clips, model.Clip{
			Index:   len(p.Clips),
			Kind:    kind,
			Start:   start,
			End:     end,
			Segment: seg,
		})
	}

	var prevEnd model.Millis
	for i, seg := range s.Segments() {
		start, end := seg.Start, seg.End
		if start >= total {
			p.Warnings = append(p.Warnings, Warning{
				Segment: i,
				Err:     model.ErrBoundaryOverrun,
				Message: fmt.Sprintf("starts at %s, after the end of the media (%s); dropped", start, total),
			})
			continue
		}
		if end > total {
			p.Warnings = append(p.Warnings, Warning{
				Segment: i,
				Err:     model.ErrBoundaryOverrun,
				Message: fmt.Sprintf("ends at %s, after the end of the media (%s); clamped", end, total),
			})
			end = total
		}
		if prevEnd < start {
			emit(model.ClipFiller, prevEnd, start, -1)
		}
		emit(model.ClipContent, start, end, i)
		prevEnd = end
	}
	if prevEnd < total {
		emit(model.ClipFiller, prevEnd, total, -1)
	}
	return p, nil
}

// AlignFrames fait en sorte que chaque clip couvre au moins une frame entière à fps,
// sans jamais faire chevaucher deux clips : la frame de fin du clip i reste la
// frame de début du clip i+1.
//   - un remplissage plus court qu'une frame est absorbé par le clip précédent
//     (par le suivant s'il est en tête) ;
//   - un clip transcrit plus court qu'une frame prend une frame au remplissage
//     voisin (précédent d'abord) ; sans remplissage assez long, ErrInvalidDuration.
//
// Les index sont renumérotés. Fonction pure.
func AlignFrames(p Plan, fps float64) (Plan, error) {
	if fps <= 0 {
		return Plan{}, fmt.Errorf("%w: framerate %v", model.ErrInvalidDuration, fps)
	}
	span := func(c model.Clip) int64 { return c.End.Frame(fps) - c.Start.Frame(fps) }
	frameStart := func(k int64) model.Millis { return model.Millis(math.Round(float64(k) * 1000 / fps)) }

	out := make([]model.Clip, 0, len(p.Clips))
	carry := model.Millis(-1)
	for _, c := range p.Clips {
		if carry >= 0 {
			c.Start, carry = carry, -1
		}
		if c.IsFiller() && span(c) <= 0 {
			if len(out) > 0 {
				out[len(out)-1].End = c.End
			} else {
				carry = c.Start
			}
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return Plan{}, fmt.Errorf("%w: media %s shorter than one frame at %.3f fps", model.ErrInvalidDuration, p.Total, fps)
	}

	for i := range out {
		c := &out[i]
		if span(*c) > 0 {
			continue
		}
		switch {
		case i > 0 && out[i-1].IsFiller() && span(out[i-1]) >= 2:
			b := frameStart(c.Start.Frame(fps) - 1)
			out[i-1].End, c.Start = b, b
		case i+1 < len(out) && out[i+1].IsFiller() && span(out[i+1]) >= 2:
			b := frameStart(c.End.Frame(fps) + 1)
			c.End, out[i+1].Start = b, b
		default:
			return Plan{}, fmt.Errorf("%w: segment %d [%s, %s) shorter than one frame at %.3f fps",
				model.ErrInvalidDuration, c.Segment, c.Start, c.End, fps)
		}
	}

	for i := range out {
		out[i].Index = i
	}
	p.Clips = out
	return p, nil
}
