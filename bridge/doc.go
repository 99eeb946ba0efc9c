// Package bridge maps gestures on registered control elements to synthetic
// keyboard events on the surface.
//
// A Bridge is built once per page. New resolves the surface and the control
// registry, and Start begins the module load and binds every control without
// waiting for the load. Every dispatch is preceded by a fresh focus of the
// surface.
package bridge
