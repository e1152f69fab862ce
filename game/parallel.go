package game

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/systems"
)

// ErrDeciderPanic wraps a panic recovered from a decision function.
var ErrDeciderPanic = errors.New("decider panicked")

// parallelThreshold is the minimum cohort size to use parallel decisions.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk represents a range of birds for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the persistent worker pool for decisions.
type parallelState struct {
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

func newParallelState() *parallelState {
	return &parallelState{numWorkers: runtime.GOMAXPROCS(0)}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(e *Episode) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(e)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(e *Episode) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			e.decideChunk(chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// decideAll evaluates every living bird's decider into e.decisions.
// Workers only read e.obs and e.slots and write their own decision cells.
func (e *Episode) decideAll() {
	n := len(e.birds)
	if e.parallel == nil || n < parallelThreshold {
		e.decideChunk(0, n)
		return
	}

	p := e.parallel
	if !p.running {
		p.startWorkers(e)
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers
	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

func (e *Episode) decideChunk(i0, i1 int) {
	for i := i0; i < i1; i++ {
		e.decideOne(i)
	}
}

// decideOne runs one decider. Errors and panics become a fault for that bird
// only.
func (e *Episode) decideOne(i int) {
	d := &e.decisions[i]
	*d = decision{}

	defer func() {
		if r := recover(); r != nil {
			d.fault = fmt.Errorf("%w: %v", ErrDeciderPanic, r)
		}
	}()

	action, err := e.deciders[e.slots[i]].Decide(e.obs[i])
	if err != nil {
		d.fault = err
		return
	}
	d.action = action
	d.flap = action > e.cfg.Decision.Threshold
}

// applyDecisions flaps or faults each bird after the decision barrier.
func (e *Episode) applyDecisions() {
	for i, b := range e.birds {
		d := &e.decisions[i]
		rec := &e.records[e.slots[i]]

		if d.fault != nil {
			e.causes[i] = components.CauseFault
			rec.Fault = d.fault.Error()
			e.log.Debug("decider_fault", "slot", e.slots[i], "tick", e.tick, "err", d.fault)
			continue
		}
		if d.flap {
			systems.Impulse(e.posMap.Get(b), e.flightMap.Get(b), e.cfg.Physics)
			rec.Flaps++
			e.collector.RecordImpulse()
		}
	}

	e.compactBirds()
}
