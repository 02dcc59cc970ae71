//go:build linux
// +build linux

package eventloop

import (
	"encoding/binary"
	"os"
	"runtime"

	"github.com/peerlink/peerlink/iface"
	"github.com/peerlink/peerlink/util"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"
)

//Loop owns the epoll handle, the wake-up eventfd, the poller goroutine and
//the reactor for one set of transport endpoints. Callers register pollable
//descriptors with a handler and submit units of work; everything executes
//serialized on the reactor.
//
// The poller never invokes handlers itself. Each time epoll_wait returns it
// hands the batch to the reactor and blocks until the batch has been fully
// processed before waiting again. Without that acknowledgement a second wait
// could observe events for descriptors whose previous events are still
// unprocessed, and the relative order of handler invocations and submitted
// units would no longer be a single total order.
//
// epoll reports, for each event, the user data set by the last epoll_ctl on
// that descriptor. Registration tags every descriptor with a fresh record,
// so an event captured before an unregister or re-register carries a record
// the registry no longer knows, and is dropped instead of being delivered to
// whatever handler now owns the descriptor value.
type Loop struct {
	options    *Options
	epfd       int
	wakeFd     int
	registry   *registry
	reactor    *Reactor
	closed     *atomic.Bool
	joined     *atomic.Bool
	pollerDone chan struct{}
}

//NewLoop creates the epoll and eventfd handles, registers the eventfd under
//the reserved record and starts the poller and reactor goroutines.
func NewLoop(opts ...Option) (*Loop, error) {
	options := parseOption(opts...)

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}

	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, os.NewSyscallError("eventfd", err)
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, packEvent(wakeupRecord, uint32(unix.EPOLLIN))); err != nil {
		_ = unix.Close(wakeFd)
		_ = unix.Close(epfd)
		return nil, os.NewSyscallError("epoll_ctl add", err)
	}

	loop := &Loop{
		options:    options,
		epfd:       epfd,
		wakeFd:     wakeFd,
		registry:   newRegistry(epfd),
		reactor:    newReactor(),
		closed:     atomic.NewBool(false),
		joined:     atomic.NewBool(false),
		pollerDone: make(chan struct{}),
	}

	go loop.poll()

	return loop, nil
}

//RegisterDescriptor installs fd in the readiness set for the given epoll
//event mask and associates handler with it. The loop takes ownership of
//neither: the caller keeps the descriptor open and the handler reachable
//until UnregisterDescriptor. Registering an fd that is already registered
//replaces its mask and handler.
func (l *Loop) RegisterDescriptor(fd int, events uint32, handler iface.IEventHandler) error {
	if l.closed.Load() {
		return util.LoopClosed
	}
	if _, err := l.registry.register(fd, events, handler); err != nil {
		util.Logger.Errorf("[%d] register descriptor: %v", fd, err)
		return err
	}
	l.wakeup()
	return nil
}

//UnregisterDescriptor removes fd from the readiness set. When it returns no
//handler invocation for this registration can start; an invocation already
//resolved inside the reactor may still complete. Unregistering an fd that is
//not registered is a caller error.
func (l *Loop) UnregisterDescriptor(fd int) error {
	if l.closed.Load() {
		return util.LoopClosed
	}
	if err := l.registry.unregister(fd); err != nil {
		util.Logger.Errorf("[%d] unregister descriptor: %v", fd, err)
		return err
	}
	l.wakeup()
	return nil
}

//RunInLoop executes fn on the reactor and waits for it, returning fn's
//error. Safe to call from inside a running unit, in which case fn runs
//immediately.
func (l *Loop) RunInLoop(fn func() error) error {
	return l.reactor.Run(fn)
}

//DeferToLoop enqueues fn on the reactor without waiting. Prefer this over
//RunInLoop when the result is not needed.
func (l *Loop) DeferToLoop(fn func()) {
	l.reactor.Defer(fn)
}

//InLoop reports whether the caller is executing inside the reactor context.
func (l *Loop) InLoop() bool {
	return l.reactor.InReactor()
}

//Close marks the loop closed and interrupts the poller's current wait. No
//new waits begin and registration operations are rejected from here on;
//units already queued on the reactor still drain. The epoll and eventfd
//handles are released by Join, once nothing can be blocked on them.
func (l *Loop) Close() error {
	if !l.closed.CAS(false, true) {
		return util.LoopClosed
	}
	l.wakeup()
	return nil
}

//Join waits for the poller goroutine to observe shutdown and exit and for
//the reactor queue to drain, then releases the epoll and eventfd handles.
//Close must have been called first. Callers are expected to have
//unregistered all descriptors by now. Must not be called from inside the
//loop.
func (l *Loop) Join() error {
	if !l.closed.Load() {
		return util.LoopRunning
	}
	if !l.joined.CAS(false, true) {
		return util.LoopJoined
	}

	<-l.pollerDone
	l.reactor.close()
	l.reactor.join()

	_ = unix.Close(l.wakeFd)
	_ = unix.Close(l.epfd)

	if n := l.registry.size(); n > 0 {
		util.Logger.Warnf("loop joined with %d descriptors still registered", n)
	}
	return nil
}

//poll drives the blocking epoll_wait. Runs on its own goroutine until Close.
func (l *Loop) poll() {
	defer close(l.pollerDone)

	if l.options.LockOSThread {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	events := make([]unix.EpollEvent, l.options.EventBufferSize)
	for !l.closed.Load() {
		n, err := unix.EpollWait(l.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			if l.closed.Load() {
				return
			}
			// The loop cannot make progress without a readiness source.
			util.Logger.Panicf("epoll_wait: %v", os.NewSyscallError("epoll_wait", err))
		}
		if n == 0 {
			continue
		}

		batch := make([]unix.EpollEvent, n)
		copy(batch, events[:n])

		// Hand the batch to the reactor and wait for completion before the
		// next wait begins. Handlers run there, not here.
		_ = l.reactor.Run(func() error {
			l.processEvents(batch)
			return nil
		})
	}
}

//processEvents runs inside the reactor. Events whose record the registry no
//longer knows are stale and dropped; if the descriptor is still registered
//and ready the event fires again on the next epoll iteration with the
//current record.
func (l *Loop) processEvents(batch []unix.EpollEvent) {
	for i := range batch {
		ev := &batch[i]
		record := eventRecord(ev)
		if record == wakeupRecord {
			l.drainWakeup()
			continue
		}
		handler := l.registry.resolve(record)
		if handler == nil {
			util.Logger.Debugf("discard stale event %s for record %d", FormatEvents(ev.Events), record)
			continue
		}
		handler.HandleEvents(ev.Events)
	}
}

//wakeup interrupts the poller's current wait so that registration changes
//and shutdown are observed promptly.
func (l *Loop) wakeup() {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	if _, err := unix.Write(l.wakeFd, buf[:]); err != nil && err != unix.EAGAIN {
		util.Logger.Debugf("wakeup write: %v", err)
	}
}

//drainWakeup resets the eventfd counter so it can signal again.
func (l *Loop) drainWakeup() {
	var buf [8]byte
	for {
		if _, err := unix.Read(l.wakeFd, buf[:]); err != nil {
			return
		}
	}
}
