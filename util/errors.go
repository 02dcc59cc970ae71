package util

import "errors"

var LoopClosed = errors.New("event loop closed")
var LoopRunning = errors.New("event loop not closed")
var LoopJoined = errors.New("event loop already joined")
var FdNotRegistered = errors.New("fd not registered")
