// Copyright 2025 EURECOM
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Contributors:
//   Giulio CAROTA
//   Thomas DU
//   Adlen KSENTINI

package ran

import (
	"math/rand/v2"
	"sync"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

// SystemInfoSource supplies the per-broadcast random fields of MIB/SIB.
type SystemInfoSource interface {
	Bandwidth() int
	SchedulingInfo() int
	TrackingAreaCode() int
	CellBarred() bool
}

type RandomSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a reproducible source for a non-zero seed and a
// randomly seeded one for zero.
func NewRandomSource(seed uint64) *RandomSource {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSource) Bandwidth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Bandwidths[s.rnd.IntN(len(models.Bandwidths))]
}

func (s *RandomSource) SchedulingInfo() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MinSchedulingInfo + s.rnd.IntN(models.MaxSchedulingInfo-models.MinSchedulingInfo+1)
}

func (s *RandomSource) TrackingAreaCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.MinTrackingAreaCode + s.rnd.IntN(models.MaxTrackingAreaCode-models.MinTrackingAreaCode+1)
}

func (s *RandomSource) CellBarred() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(2) == 1
}
