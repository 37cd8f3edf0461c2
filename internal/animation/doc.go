// Package animation drives a planned level sequence frame by frame.
//
// A Driver owns at most one running animation. Each tick computes the contour
// geometry of the current level on the shared value grid and hands a Frame to
// the caller. With LeaveTrace set, frame k also carries every distinct level
// visited before k.
//
//	d := animation.NewDriver(logger)
//	err := d.Start(ctx, animation.Animation{
//	    Values:   values,
//	    Sequence: seq,
//	    Provider: provider,
//	    Interval: animation.SpeedInterval("x1"),
//	}, func(f animation.Frame) { ... })
//	...
//	d.Stop()
package animation
