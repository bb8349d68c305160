// Package statsview serves runtime statistics over HTTP while a front end runs. It is
// only functional when built with the statsview tag; otherwise Start fails with
// ErrUnavailable and Available reports false.
//
// Graphs are served under /debug/statsview and the standard pprof pages under
// /debug/pprof/ on the configured address.
package statsview

import "errors"

// ErrUnavailable is returned by Start in builds without the statsview tag.
var ErrUnavailable = errors.New("statsview: not built in")

const graphPath = "/debug/statsview"
