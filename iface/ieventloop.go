package iface

//IEventLoop is the registration and submission surface exposed to handler
//owners. Close must precede Join; Join must precede discarding the loop.
type IEventLoop interface {
	RegisterDescriptor(fd int, events uint32, handler IEventHandler) error
	UnregisterDescriptor(fd int) error
	RunInLoop(fn func() error) error
	DeferToLoop(fn func())
	InLoop() bool
	Close() error
	Join() error
}
