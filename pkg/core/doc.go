// Package core provides the observable value type shared by the clock state
// and the engine.
package core
