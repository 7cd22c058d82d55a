package world

// AnimalID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on retirement so a stale id held
// by a consumer can never alias a newly spawned animal.
type AnimalID uint64

func NewAnimalID(index uint32, generation uint32) AnimalID {
	return AnimalID(uint64(generation)<<32 | uint64(index))
}

func (id AnimalID) Index() uint32      { return uint32(id) }
func (id AnimalID) Generation() uint32 { return uint32(id >> 32) }
func (id AnimalID) IsZero() bool       { return id == 0 }

// idPool allocates AnimalIDs with generational indices and a free list.
// Index 0 is reserved so the zero AnimalID is never live and can serve as
// a "no animal" sentinel.
type idPool struct {
	generations []uint32
	freeList    []uint32
	nextIndex   uint32
}

func newIDPool() *idPool {
	p := &idPool{
		generations: make([]uint32, 1, 256),
		freeList:    make([]uint32, 0, 64),
		nextIndex:   1,
	}
	p.generations[0] = 1 // generation 0 at index 0 never matches
	return p
}

func (p *idPool) Create() AnimalID {
	if len(p.freeList) > 0 {
		idx := p.freeList[len(p.freeList)-1]
		p.freeList = p.freeList[:len(p.freeList)-1]
		return NewAnimalID(idx, p.generations[idx])
	}
	idx := p.nextIndex
	p.nextIndex++
	if int(idx) >= len(p.generations) {
		p.generations = append(p.generations, 0)
	}
	return NewAnimalID(idx, p.generations[idx])
}

func (p *idPool) Alive(id AnimalID) bool {
	idx := id.Index()
	if idx >= p.nextIndex {
		return false
	}
	return p.generations[idx] == id.Generation()
}

func (p *idPool) Destroy(id AnimalID) {
	idx := id.Index()
	if idx >= p.nextIndex {
		return
	}
	if p.generations[idx] != id.Generation() {
		return // already destroyed (stale reference)
	}
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
}
