package dagflow

import (
	"time"

	"github.com/dagflowio/dagflow/dagflow/emit"
)

// runConfig collects a run's options before Scheduler.Run applies them.
type runConfig struct {
	selector  Selector
	processor Processor
	emitter   emit.Emitter
	verbose   bool
	pacing    time.Duration
	metrics   *PrometheusMetrics
	onStart   func(nodeID, desc string)
	onFinish  func(nodeID, desc string, state ExecState, output any)
}

// RunOption configures a single Scheduler.Run invocation.
type RunOption func(*runConfig)

// WithSelector overrides the default FullSelector.
func WithSelector(s Selector) RunOption {
	return func(c *runConfig) { c.selector = s }
}

// WithProcessor overrides the default SequentialProcessor. Use
// ParallelProcessor to dispatch a batch's nodes concurrently (spec.md §4.5).
func WithProcessor(p Processor) RunOption {
	return func(c *runConfig) { c.processor = p }
}

// WithEmitter installs an observability backend. The default is
// emit.NullEmitter.
func WithEmitter(e emit.Emitter) RunOption {
	return func(c *runConfig) { c.emitter = e }
}

// WithVerbose enables batch_start/batch_finish events in addition to the
// always-on node_start/node_finish/node_aborted/node_error events.
func WithVerbose(v bool) RunOption {
	return func(c *runConfig) { c.verbose = v }
}

// WithPacing inserts a fixed delay between scheduler rounds, useful for
// rate-limiting calls to external services invoked by transforms.
func WithPacing(d time.Duration) RunOption {
	return func(c *runConfig) { c.pacing = d }
}

// WithMetrics records each node's terminal state and the per-round
// in-flight node count into m. No durations are recorded.
func WithMetrics(m *PrometheusMetrics) RunOption {
	return func(c *runConfig) { c.metrics = m }
}

// WithOnStart installs a hook fired once per node, immediately before its
// transform runs.
func WithOnStart(f func(nodeID, desc string)) RunOption {
	return func(c *runConfig) { c.onStart = f }
}

// WithOnFinish installs a hook fired once per node, immediately after its
// transform returns successfully. It does not fire for a node whose gate
// aborts it or whose transform returns an error.
func WithOnFinish(f func(nodeID, desc string, state ExecState, output any)) RunOption {
	return func(c *runConfig) { c.onFinish = f }
}

func defaultRunConfig() *runConfig {
	return &runConfig{
		selector:  FullSelector{},
		processor: SequentialProcessor{},
		emitter:   emit.NullEmitter{},
	}
}
