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

package models

import "slices"

// PlmnId is the MCC+MNC digit string broadcast by a cell, e.g. "310260".
type PlmnId string

func (p PlmnId) Mcc() string {
	if len(p) < 3 {
		return string(p)
	}
	return string(p[:3])
}

func (p PlmnId) Mnc() string {
	if len(p) < 3 {
		return ""
	}
	return string(p[3:])
}

// PlmnList is a set of PLMNs a terminal is allowed to camp on.
type PlmnList []PlmnId

func (l PlmnList) Contains(p PlmnId) bool {
	return slices.Contains(l, p)
}

type Snssai struct {
	Sst int32  `yaml:"sst" json:"sst"`
	Sd  string `yaml:"sd,omitempty" json:"sd,omitempty"`
}
