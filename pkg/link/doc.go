// Package link provides the link engine on top of the crsf codec.
package link

// The engine is driven by a pump: every call drains the bytes already
// available from the transport, feeds them into the Assembler, dispatches
// complete frames and then polls the idle and failsafe timers. It never
// blocks and holds no locks; callers serialize access, usually by pumping
// from a framework.Loop controller.
