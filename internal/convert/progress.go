package convert

// Stage names a conversion step.
type Stage string

const (
	StageStart  Stage = "start"
	StageDecode Stage = "decode"
	StageResize Stage = "resize"
	StageEncode Stage = "encode"
	StageDone   Stage = "done"
)

// Approximate completion reported after each stage. Only the 0 and 100
// endpoints are meaningful.
var stagePercent = map[Stage]float64{
	StageStart:  0,
	StageDecode: 30,
	StageResize: 60,
	StageEncode: 90,
	StageDone:   100,
}

// Progress is one progress event.
type Progress struct {
	Stage   Stage
	Percent float64
}

// ProgressSink receives progress events synchronously on the converting
// goroutine. A nil sink is allowed.
type ProgressSink func(Progress)

// progressTracker keeps reported percentages monotonic.
type progressTracker struct {
	sink ProgressSink
	last float64
}

func (t *progressTracker) emit(stage Stage) {
	pct := stagePercent[stage]
	if pct < t.last {
		pct = t.last
	}
	t.last = pct
	if t.sink != nil {
		t.sink(Progress{Stage: stage, Percent: pct})
	}
}
