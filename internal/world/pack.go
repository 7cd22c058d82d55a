package world

// PackID identifies a live pack in the registry. Zero means "no pack".
type PackID int32

// PackData is a transient group of same-species animals sharing cohesion
// and stat bonuses around a running centroid. MemberIDs is the dominance
// order: index 0 is the leader.
type PackData struct {
	ID        PackID
	Species   Species
	Type      PackType
	LeaderID  AnimalID
	MemberIDs []AnimalID
	Center    Vec2
	Radius    float64
	Cohesion  float64 // [0,1]
	MaxSize   int
}

func (p *PackData) Size() int { return len(p.MemberIDs) }

// Contains reports whether id is a member.
func (p *PackData) Contains(id AnimalID) bool {
	for _, m := range p.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// CreatePack registers a new pack with the given founding members. The
// first member is the leader. Returns nil if fewer than two members are
// given or the cap is exceeded.
func (s *State) CreatePack(species Species, ptype PackType, cfg PackConfig, members []AnimalID) *PackData {
	if len(members) < 2 || len(members) > cfg.MaxSize {
		return nil
	}
	s.nextPackID++
	p := &PackData{
		ID:        s.nextPackID,
		Species:   species,
		Type:      ptype,
		LeaderID:  members[0],
		MemberIDs: append([]AnimalID(nil), members...),
		Radius:    cfg.Radius,
		Cohesion:  cfg.FormChance, // refined by the pack system each tick
		MaxSize:   cfg.MaxSize,
	}
	s.packs[p.ID] = p
	for _, id := range members {
		s.packByAnimal[id] = p.ID
	}
	s.recomputePackCenter(p)
	return p
}

// Pack returns a live pack by id.
func (s *State) Pack(id PackID) *PackData {
	return s.packs[id]
}

// PackOf returns the pack the animal belongs to, or nil.
func (s *State) PackOf(id AnimalID) *PackData {
	pid, ok := s.packByAnimal[id]
	if !ok {
		return nil
	}
	return s.packs[pid]
}

// AllPacks iterates the live pack registry.
func (s *State) AllPacks(fn func(*PackData)) {
	for _, p := range s.packs {
		fn(p)
	}
}

// PackCount returns the number of live packs.
func (s *State) PackCount() int { return len(s.packs) }

// JoinPack adds an animal to an existing pack, respecting the size cap.
func (s *State) JoinPack(p *PackData, id AnimalID) bool {
	if p.Size() >= p.MaxSize || p.Contains(id) {
		return false
	}
	if _, taken := s.packByAnimal[id]; taken {
		return false
	}
	p.MemberIDs = append(p.MemberIDs, id)
	s.packByAnimal[id] = p.ID
	return true
}

// LeavePack removes an animal from its pack. Removing the leader promotes
// the next member in the hierarchy; a pack left with fewer than two members
// is dissolved. Returns true if the pack was dissolved.
func (s *State) LeavePack(id AnimalID) bool {
	pid, ok := s.packByAnimal[id]
	if !ok {
		return false
	}
	delete(s.packByAnimal, id)
	p := s.packs[pid]
	if p == nil {
		return false
	}
	for i, m := range p.MemberIDs {
		if m == id {
			p.MemberIDs = append(p.MemberIDs[:i], p.MemberIDs[i+1:]...)
			break
		}
	}
	if len(p.MemberIDs) < 2 {
		s.dissolvePack(p)
		return true
	}
	if p.LeaderID == id {
		p.LeaderID = p.MemberIDs[0]
	}
	return false
}

func (s *State) dissolvePack(p *PackData) {
	for _, m := range p.MemberIDs {
		delete(s.packByAnimal, m)
	}
	delete(s.packs, p.ID)
}

// recomputePackCenter refreshes the running centroid from member positions.
// Members that are gone are dropped here as well.
func (s *State) recomputePackCenter(p *PackData) {
	var sum Vec2
	live := p.MemberIDs[:0]
	for _, id := range p.MemberIDs {
		a := s.Get(id)
		if a == nil || !a.Active {
			delete(s.packByAnimal, id)
			continue
		}
		sum = sum.Add(a.Position)
		live = append(live, id)
	}
	p.MemberIDs = live
	if len(p.MemberIDs) < 2 {
		s.dissolvePack(p)
		return
	}
	p.Center = sum.Scale(1 / float64(len(p.MemberIDs)))
	if !p.Contains(p.LeaderID) {
		p.LeaderID = p.MemberIDs[0]
	}

	if p.Radius > 0 {
		spread := 0.0
		for _, id := range p.MemberIDs {
			spread += s.animals[id].Position.Dist(p.Center)
		}
		spread /= float64(len(p.MemberIDs))
		c := 1 - spread/p.Radius
		if c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		p.Cohesion = c
	}
}

// RefreshPacks recomputes centroids and drops stale members for every pack.
func (s *State) RefreshPacks() {
	for _, p := range s.packs {
		s.recomputePackCenter(p)
	}
}
