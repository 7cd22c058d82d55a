package persist

import (
	"encoding/json"
	"fmt"

	"github.com/wildgrove/server/internal/world"
)

// EncodeAnimal serializes every behavior-affecting field of an animal.
// Derived per-tick scratch (modifier scales) is excluded and rebuilt on
// load.
func EncodeAnimal(a *world.Animal) ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode animal %d: %w", a.ID, err)
	}
	return raw, nil
}

// DecodeAnimal restores an animal from its serialized form. The modifier
// scratch resets to neutral; the environment layer rewrites it on the
// next tick anyway.
func DecodeAnimal(raw []byte) (*world.Animal, error) {
	var a world.Animal
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode animal: %w", err)
	}
	a.AI.ActivityScale = 1
	a.AI.FleeScale = 1
	a.Active = true
	return &a, nil
}
