package transport

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"
)

// RunSummary describes one pipeline run for a RunRecorder.
type RunSummary struct {
	StartedAt  time.Time
	Duration   time.Duration
	InputPath  string
	OutputPath string

	Sources      int
	Destinations int
	TotalSupply  int
	DummySource  bool
	DummyDest    bool

	// Solved is false when the backend reported no optimal solution.
	Solved    bool
	Status    string
	Backend   string
	Objective float64
	Cost      int
	Shipments []Shipment
}

// RunRecorder stores run summaries. Recording is best effort: a failing
// recorder never changes the outcome of a run.
type RunRecorder interface {
	RecordRun(ctx context.Context, run RunSummary) error
}

// Result is what a successful run produced.
type Result struct {
	Instance   *Instance
	Allocation *Allocation
}

// Pipeline runs Loader, Solver and Writer in sequence.
type Pipeline struct {
	Solver   *Solver
	Writer   *Writer
	Recorder RunRecorder
	Logger   *log.Logger
}

func (p *Pipeline) logger() *log.Logger {
	if p.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return p.Logger
}

// Run loads inputPath, solves it and writes the plan to outputPath.
//
// When the backend does not find an optimal solution Run returns an error
// matching ErrNoSolution and leaves outputPath untouched.
func (p *Pipeline) Run(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	logger := p.logger()
	started := time.Now()

	in, err := Load(inputPath)
	if err != nil {
		return nil, errors.Wrap(err, "load instance")
	}
	switch {
	case in.DummyDestination:
		logger.Printf("supply exceeds demand by %d: added dummy destination %d",
			in.Demands[in.NumDestinations()-1], in.NumDestinations())
	case in.DummySource:
		logger.Printf("demand exceeds supply by %d: added dummy source %d",
			in.Supplies[in.NumSources()-1], in.NumSources())
	}

	summary := RunSummary{
		StartedAt:    started,
		InputPath:    inputPath,
		OutputPath:   outputPath,
		Sources:      in.NumSources(),
		Destinations: in.NumDestinations(),
		TotalSupply:  in.TotalSupply(),
		DummySource:  in.DummySource,
		DummyDest:    in.DummyDestination,
	}

	alloc, err := p.Solver.Solve(ctx, in)
	if err != nil {
		var noSol *NoSolutionError
		if errors.As(err, &noSol) {
			summary.Status = noSol.Status.String()
			summary.Backend = noSol.Backend
			summary.Duration = time.Since(started)
			p.record(ctx, summary)
			return nil, err
		}
		return nil, errors.Wrap(err, "solve instance")
	}

	if err := p.Writer.WriteFile(outputPath, in, alloc); err != nil {
		return nil, errors.Wrap(err, "write report")
	}

	summary.Solved = true
	summary.Status = alloc.Status.String()
	summary.Backend = alloc.Backend
	summary.Objective = alloc.Objective
	summary.Cost = alloc.Cost(in)
	summary.Shipments = alloc.Shipments
	summary.Duration = time.Since(started)
	p.record(ctx, summary)

	if d := alloc.Deviation(in); d > 0 {
		logger.Printf("rounded plan deviates from supplies or demands by up to %d unit(s)", d)
	}
	return &Result{Instance: in, Allocation: alloc}, nil
}

// record stores run even when ctx has expired, so runs that hit the solve
// deadline still reach the history.
func (p *Pipeline) record(ctx context.Context, run RunSummary) {
	if p.Recorder == nil {
		return
	}
	if err := p.Recorder.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		p.logger().Printf("recording run: %v", err)
	}
}
