package eventloop

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/peerlink/peerlink/util"
	"go.uber.org/atomic"
)

//Reactor is the single serialized execution context of the loop. Every
//handler invocation and every submitted unit passes through it, so all of
//them are totally ordered relative to each other. Units run strictly one at
//a time, FIFO by enqueue order, on a dedicated goroutine.
type Reactor struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *queue.Queue
	closed  bool
	done    chan struct{}
	gid     *atomic.Uint64 // goroutine hosting the execution right
}

func newReactor() *Reactor {
	reactor := &Reactor{
		pending: queue.New(),
		done:    make(chan struct{}),
		gid:     atomic.NewUint64(0),
	}
	reactor.cond = sync.NewCond(&reactor.mu)
	go reactor.loop()
	return reactor
}

//InReactor reports whether the caller is running inside the reactor context.
func (r *Reactor) InReactor() bool {
	return r.gid.Load() == util.GoroutineID()
}

//Defer enqueues fn without waiting for it. A panic inside a deferred unit is
//not recovered: nobody is left to observe the failure, so it takes the
//process down rather than leaving the loop in an unknowable state.
func (r *Reactor) Defer(fn func()) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		panic(util.LoopClosed)
	}
	r.pending.Add(fn)
	r.mu.Unlock()
	r.cond.Signal()
}

//Run executes fn inside the reactor context and blocks until it finishes,
//returning fn's error. A panic inside fn is re-raised in the caller and the
//reactor keeps draining subsequent units. Called from inside the context it
//runs fn immediately, so a unit can submit follow-up work without
//deadlocking; note the nested unit then runs ahead of anything queued.
func (r *Reactor) Run(fn func() error) error {
	if r.InReactor() {
		return fn()
	}

	var err error
	var panicked interface{}
	done := make(chan struct{})
	r.Defer(func() {
		defer close(done)
		defer func() {
			panicked = recover()
		}()
		err = fn()
	})
	<-done

	if panicked != nil {
		panic(panicked)
	}
	return err
}

//loop drains pending units until the reactor is closed and the queue is
//empty.
func (r *Reactor) loop() {
	r.gid.Store(util.GoroutineID())
	defer close(r.done)
	for {
		r.mu.Lock()
		for r.pending.Length() == 0 && !r.closed {
			r.cond.Wait()
		}
		if r.pending.Length() == 0 {
			r.mu.Unlock()
			return
		}
		fn := r.pending.Remove().(func())
		r.mu.Unlock()
		fn()
	}
}

//close stops accepting new units; already-queued units still drain.
func (r *Reactor) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.cond.Broadcast()
}

//join waits for the queue to drain and the reactor goroutine to exit.
func (r *Reactor) join() {
	<-r.done
}
