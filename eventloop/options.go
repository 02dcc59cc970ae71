package eventloop

import (
	"github.com/peerlink/peerlink/util"
	"github.com/sirupsen/logrus"
)

//Options optional settings, defaults apply when unset
type Options struct {
	EventBufferSize int    // capacity of one epoll_wait batch, default 64
	LockOSThread    bool   // pin the poller goroutine to its OS thread
	LogLevel        string // logrus level name, default info
}

type Option = func(opts *Options)

//parseOption applies opts and fills in defaults
func parseOption(opts ...Option) *Options {
	options := new(Options)
	for _, opt := range opts {
		opt(options)
	}

	if options.EventBufferSize <= 0 {
		options.EventBufferSize = 64
	}

	if options.LogLevel != "" {
		if level, err := logrus.ParseLevel(options.LogLevel); err == nil {
			util.Logger.SetLevel(level)
		}
	}

	return options
}

//WithEventBufferSize capacity of one epoll_wait batch
func WithEventBufferSize(size int) Option {
	return func(opts *Options) {
		opts.EventBufferSize = size
	}
}

//WithLockOSThread pin the poller goroutine to its OS thread
func WithLockOSThread(lock bool) Option {
	return func(opts *Options) {
		opts.LockOSThread = lock
	}
}

//WithLogLevel logging verbosity, e.g. "debug"
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}
