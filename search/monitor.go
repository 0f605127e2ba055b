package search

import (
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/plan"
)

// SearchMonitor provides hooks to observe staged search execution.
// Implement this interface to track stage planning, execution, failures, and
// the final ranking during a retrieval request.
type SearchMonitor interface {
	Start(req Request)
	StagePlanned(stage plan.SearchStage)
	StageSkipped(label, reason string)
	StageCompleted(label string, hits int)
	StageFailed(label string, err error)
	AfterMerge(merged []StageHit)
	Finish(results []core.RankedResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ Request)                      {}
func (n *noopMonitor) StagePlanned(_ plan.SearchStage)      {}
func (n *noopMonitor) StageSkipped(_, _ string)             {}
func (n *noopMonitor) StageCompleted(_ string, _ int)       {}
func (n *noopMonitor) StageFailed(_ string, _ error)        {}
func (n *noopMonitor) AfterMerge(_ []StageHit)              {}
func (n *noopMonitor) Finish(_ []core.RankedResult)         {}

// NoopMonitor returns a monitor that ignores every callback. Exported for
// callers that layer their own orchestration on the coordinator.
func NoopMonitor() SearchMonitor {
	return &noopMonitor{}
}
