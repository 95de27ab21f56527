// Package clipwork exécute le travail par clip d'une phase (découpe, merge)
// avec un parallélisme borné. Contrairement à errgroup seul, un échec
// n'annule pas les autres clips : toutes les erreurs sont rassemblées et
// renvoyées ensemble, triées par index.
package clipwork

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ClipFailure associe une erreur à l'index du clip concerné.
type ClipFailure struct {
	Index int
	Err   error
}

func (f ClipFailure) Error() string {
	return fmt.Sprintf("clip %d: %v", f.Index, f.Err)
}

func (f ClipFailure) Unwrap() error { return f.Err }

// BatchError regroupe les échecs d'une phase.
type BatchError struct {
	Phase    string
	Failures []ClipFailure // triés par index
}

func (e *BatchError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d clip(s) failed", e.Phase, len(e.Failures))
	for _, f := range e.Failures {
		sb.WriteString("\n  - ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Unwrap expose chaque échec : errors.Is/As traversent le lot.
func (e *BatchError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f
	}
	return out
}

// Indices retourne les index en échec, dans l'ordre.
func (e *BatchError) Indices() []int {
	out := make([]int, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Index
	}
	return out
}

// NewBatchError construit un BatchError trié, ou nil si failures est vide.
func NewBatchError(phase string, failures []ClipFailure) error {
	if len(failures) == 0 {
		return nil
	}
	sorted := append([]ClipFailure(nil), failures...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	return &BatchError{Phase: phase, Failures: sorted}
}

// AsBatch extrait un BatchError d'une chaîne d'erreurs.
func AsBatch(err error) (*BatchError, bool) {
	var be *BatchError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// Run appelle fn(ctx, i) pour i dans [0, n) avec au plus limit appels
// simultanés (limit <= 0 : un par clip). Tous les clips sont tentés même si
// certains échouent. Si ctx est annulé, aucun nouveau clip n'est lancé et les
// clips non lancés sont comptés en échec avec ctx.Err().
func Run(ctx context.Context, phase string, n, limit int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return nil
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	var (
		mu       sync.Mutex
		failures []ClipFailure
	)
	fail := func(i int, err error) {
		mu.Lock()
		failures = append(failures, ClipFailure{Index: i, Err: err})
		mu.Unlock()
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			for j := i; j < n; j++ {
				fail(j, err)
			}
			break
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				fail(i, err)
				return nil
			}
			if err := fn(ctx, i); err != nil {
				fail(i, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return NewBatchError(phase, failures)
}
