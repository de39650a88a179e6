package buoyancy

import (
	"github.com/akmonengine/buoyancy/actor"
)

// BroadPhase rebuilds the grid and returns the overlapping trigger pairs,
// sorted by body index whatever the number of workers
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.RigidBody, workersCount int) []Pair {
	spatialGrid.Clear()
	for i, body := range bodies {
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	var pairs []Pair
	if workersCount <= 1 {
		pairs = spatialGrid.FindPairs(bodies)
	} else {
		pairs = make([]Pair, 0, len(bodies)/2)
		for pair := range spatialGrid.FindPairsParallel(bodies, workersCount) {
			pairs = append(pairs, pair)
		}
	}
	sortPairs(pairs)

	return pairs
}
