package buoyancy

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/buoyancy/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// MAX_CELLS_PER_BODY bounds the cells a body is inserted into, larger bodies
// (open seas, huge lakes) are tested against every other body instead
const MAX_CELLS_PER_BODY = 4096

// ============================================================================
// Types
// ============================================================================

// CellKey - coordinates of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell - body indices stored in a cell
type Cell struct {
	bodyIndices []int
}

// Pair - two bodies whose AABBs overlap, one of them at least being a trigger
// BodyA always has the lower index in the world body list.
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody

	indexA, indexB int
}

// SpatialGrid - uniform hashed grid used as broad phase
type SpatialGrid struct {
	cellSize  float64
	cells     []Cell
	cellMask  int
	unbounded []int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid - creates a grid with numCells rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - rounds up to the next power of two
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert - inserts a body in every cell it covers
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	aabb := body.Shape.GetAABB()
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	if cellSpan(minCell, maxCell) > MAX_CELLS_PER_BODY {
		sg.unbounded = append(sg.unbounded, bodyIndex)
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				sg.cells[cellIdx].bodyIndices = append(
					sg.cells[cellIdx].bodyIndices,
					bodyIndex,
				)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.unbounded = sg.unbounded[:0]
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
	sort.Ints(sg.unbounded)
}

// FindPairs - sequential version
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))

	for bodyIdx := range bodies {
		clear(seen)
		sg.pairsFor(bodyIdx, bodies, seen, func(p Pair) {
			pairs = append(pairs, p)
		})
	}

	return pairs
}

// FindPairsParallel - parallel version returning a channel, pairs come in no particular order
func (sg *SpatialGrid) FindPairsParallel(bodies []*actor.RigidBody, numWorkers int) <-chan Pair {
	var wg sync.WaitGroup
	pairsChan := make(chan Pair, numWorkers*10)

	bodiesPerWorker := len(bodies) / numWorkers
	if bodiesPerWorker == 0 {
		bodiesPerWorker = 1
	}

	for w := 0; w < numWorkers; w++ {
		startIdx := w * bodiesPerWorker
		endIdx := startIdx + bodiesPerWorker
		if w == numWorkers-1 {
			endIdx = len(bodies)
		}
		if startIdx >= len(bodies) {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(bodies))
			for bodyIdx := start; bodyIdx < end; bodyIdx++ {
				clear(seen)
				sg.pairsFor(bodyIdx, bodies, seen, func(p Pair) {
					pairsChan <- p
				})
			}
		}(startIdx, endIdx)
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

// pairsFor emits every pair (bodyIdx, other) with other > bodyIdx
func (sg *SpatialGrid) pairsFor(bodyIdx int, bodies []*actor.RigidBody, seen []bool, emit func(Pair)) {
	bodyA := bodies[bodyIdx]

	test := func(otherIdx int) {
		if otherIdx <= bodyIdx || seen[otherIdx] {
			return
		}
		seen[otherIdx] = true

		bodyB := bodies[otherIdx]
		if !canOverlap(bodyA, bodyB) {
			return
		}
		if bodyA.Shape.GetAABB().Overlaps(bodyB.Shape.GetAABB()) {
			emit(Pair{BodyA: bodyA, BodyB: bodyB, indexA: bodyIdx, indexB: otherIdx})
		}
	}

	aabb := bodyA.Shape.GetAABB()
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	if cellSpan(minCell, maxCell) > MAX_CELLS_PER_BODY {
		// unbounded body: test against everyone after it
		for otherIdx := bodyIdx + 1; otherIdx < len(bodies); otherIdx++ {
			test(otherIdx)
		}
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})
				for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
					test(otherIdx)
				}
			}
		}
	}

	for _, otherIdx := range sg.unbounded {
		test(otherIdx)
	}
}

// canOverlap filters pairs that can never produce a trigger event
func canOverlap(bodyA, bodyB *actor.RigidBody) bool {
	if !bodyA.IsTrigger && !bodyB.IsTrigger {
		return false
	}
	if bodyA.BodyType == actor.BodyTypeStatic && bodyB.BodyType == actor.BodyTypeStatic {
		return false
	}
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return false
	}
	return true
}

// sortPairs orders pairs by body indices so events are emitted deterministically
func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].indexA != pairs[j].indexA {
			return pairs[i].indexA < pairs[j].indexA
		}
		return pairs[i].indexB < pairs[j].indexB
	})
}

func cellSpan(minCell, maxCell CellKey) float64 {
	return float64(maxCell.X-minCell.X+1) *
		float64(maxCell.Y-minCell.Y+1) *
		float64(maxCell.Z-minCell.Z+1)
}

// worldToCell - converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - hashes a cell to an index in the array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
