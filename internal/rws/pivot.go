package rws

import "math"

// Grid is a pivot of mean RWS over (angle × range gate). Rows follow
// DistanceM ascending, columns follow AngleDeg ascending. Cells with no
// observations hold NaN so renderers can leave them blank.
type Grid struct {
	AngleDeg  []float64
	DistanceM []float64
	Mean      [][]float64 // [distance][angle]
}

// PivotMeanRWS builds the mean-RWS grid of records over the given angular
// dimension against range-gate distance. Both axes use exact value
// equality, matching the quantized gate and scan-angle sets.
func PivotMeanRWS(records []Record, angle FieldFunc) Grid {
	g := Grid{
		AngleDeg:  DistinctValues(records, angle),
		DistanceM: DistinctValues(records, FieldDistance),
	}

	colIdx := make(map[float64]int, len(g.AngleDeg))
	for i, v := range g.AngleDeg {
		colIdx[v] = i
	}
	rowIdx := make(map[float64]int, len(g.DistanceM))
	for i, v := range g.DistanceM {
		rowIdx[v] = i
	}

	sums := make([][]float64, len(g.DistanceM))
	counts := make([][]int, len(g.DistanceM))
	for i := range sums {
		sums[i] = make([]float64, len(g.AngleDeg))
		counts[i] = make([]int, len(g.AngleDeg))
	}

	for _, r := range records {
		row := rowIdx[r.DistanceM]
		col := colIdx[angle(r)]
		sums[row][col] += r.RWSMps
		counts[row][col]++
	}

	g.Mean = make([][]float64, len(g.DistanceM))
	for i := range g.Mean {
		g.Mean[i] = make([]float64, len(g.AngleDeg))
		for j := range g.Mean[i] {
			if counts[i][j] == 0 {
				g.Mean[i][j] = math.NaN()
				continue
			}
			g.Mean[i][j] = sums[i][j] / float64(counts[i][j])
		}
	}
	return g
}
