// Package plotter turns level-curve requests into plans and frames.
//
// The plotter supports three modes:
//
// 1. Draw mode - the level curve f(x, y) = N for one level:
//
//	{
//	  "mode": "draw",
//	  "expression": "x^2 + y^2",
//	  "amplitude": 4
//	}
//
// 2. Animate mode - a there-and-back sweep of levels between -N and N,
// keeping only levels whose curve exists:
//
//	{
//	  "mode": "animate",
//	  "expression": "x^2 - y^2",
//	  "amplitude": 4,
//	  "frame_count": 20,
//	  "leave_trace": true,
//	  "speed": "x1.5"
//	}
//
// 3. Validate mode - compile only, report the symbols used:
//
//	{
//	  "mode": "validate",
//	  "expression": "sin(x) * cos(y)"
//	}
//
// An optional CEL "region" condition over x and y restricts the plot, e.g.
// "x > 0.0 && y < x". Points outside it are treated as undefined.
//
// When mode is omitted it is detected: frame_count, leave_trace or speed
// select animate, an amplitude alone selects draw, and a bare expression is
// validated.
package plotter
