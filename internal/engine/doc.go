// Package engine contains the mission simulation: the state it owns, the
// subsystems that advance it each tick and the frame loop that drives it.
//
// The Engine is single-owner. Only the Runner goroutine calls into it;
// everything else submits closures through Runner.Do.
package engine
