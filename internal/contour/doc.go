// Package contour extracts level curves from a ValueGrid.
//
// The Provider interface is all the planner and the animation driver need:
// an existence test and the geometry itself. MarchingSquares implements it
// with linear interpolation along cell edges. Cells with a NaN or infinite
// corner are skipped, so grids holding domain errors are tolerated. Saddle
// cells are resolved with the average of their four corners.
//
// Example usage:
//
//	s := grid.DefaultSampling()
//	provider := contour.NewMarchingSquares(s)
//
//	if provider.Exists(z, 4) {
//	    for _, line := range provider.Geometry(z, 4) {
//	        fmt.Println(len(line), line.Closed())
//	    }
//	}
//
// Neither query mutates the grid, and both are deterministic: the same grid
// and level always give the same answer and the same polylines in the same
// order.
package contour
