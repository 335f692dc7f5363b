package recorder

// NoopRecorder is a no-op implementation used when nothing needs the history.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordAction(_ *ActionEvent) error { return nil }
func (n *NoopRecorder) RecordCycle(_ *CycleEvent) error   { return nil }
func (n *NoopRecorder) RecordRound(_ *RoundEvent) error   { return nil }
func (n *NoopRecorder) RecordPoints(_ *PointsEvent) error { return nil }
func (n *NoopRecorder) Close() error                      { return nil }
