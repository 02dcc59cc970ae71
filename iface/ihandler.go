package iface

//IEventHandler is implemented by connections, listeners and anything else
//that registers a descriptor with the loop. HandleEvents is only ever called
//from the loop's reactor context, one invocation at a time, with the epoll
//event bits that fired. Handlers are expected to do small, non-blocking work.
type IEventHandler interface {
	HandleEvents(events uint32)
}
