package runlog

import "context"

// Recorder reçoit la progression clip par clip d'une phase.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Nop ignore tous les événements.
type Nop struct{}

func (Nop) Record(context.Context, Event) error { return nil }

type boundRecorder struct {
	j     *Journal
	runID string
}

func (b boundRecorder) Record(ctx context.Context, ev Event) error {
	return b.j.Record(ctx, b.runID, ev)
}

// Bind retourne un Recorder qui écrit dans le run runID.
func (j *Journal) Bind(runID string) Recorder {
	return boundRecorder{j: j, runID: runID}
}
