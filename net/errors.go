package net

import "errors"

var (
	// ErrFrameTooLarge closes a session whose buffered partial frame exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("net: frame too large")
	// ErrIdleTimeout closes a session that sent nothing for IdleTimeout.
	ErrIdleTimeout = errors.New("net: idle timeout")
	// ErrQueueFull is returned by Send when the outbound queue is full under OverflowDrop.
	ErrQueueFull = errors.New("net: queue full")
	// ErrQueueOverflow closes a session whose queue filled under OverflowDisconnect.
	ErrQueueOverflow = errors.New("net: queue overflow")
	// ErrSessionClosed is returned by Send after close and is the reason
	// recorded when the server closes a session itself.
	ErrSessionClosed = errors.New("net: session closed")
	// ErrListenerBind wraps the failure to bind the listening socket.
	ErrListenerBind = errors.New("net: listener bind failed")
)
