// Package core provides a small, stable facade over colourscan's scanner and
// engine for programs that want to find redundant colour escapes without
// depending on internal packages.
//
// Example:
//
//	res, err := core.ScanFile("world.sav", core.DefaultThreshold)
//	if err != nil { /* handle */ }
//	_ = core.MarshalResults(os.Stdout, []core.FileResult{res})
package core
