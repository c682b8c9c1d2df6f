package ecs

import "strconv"

// Entity is an opaque handle. The low 32 bits hold the slot id and the high
// 32 bits its generation, so a stale handle never aliases a recycled slot.
// The zero Entity is the null handle.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

// Null is the invalid handle.
const Null Entity = 0

func makeEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID {
	return entityID(uint32(e))
}

func (e Entity) generation() generation {
	return generation(uint32(uint64(e) >> entityIDBits))
}

func (e Entity) String() string {
	if e == Null {
		return "null"
	}
	return strconv.FormatUint(uint64(e.id()), 10) + "v" + strconv.FormatUint(uint64(e.generation()), 10)
}

func (e Entity) Valid() bool {
	return e.id() > 0
}
