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
	"sync"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

type CellConfig struct {
	Id             int           `yaml:"id" json:"id" valid:"required"`
	SignalStrength int           `yaml:"signalStrength" json:"signalStrength"`
	PlmnId         models.PlmnId `yaml:"plmn" json:"plmn" valid:"required,numeric,stringlength(5|6)"`
	Frequency      int           `yaml:"frequency" json:"frequency"`
	CellType       string        `yaml:"type" json:"type"`
	Barred         bool          `yaml:"barred" json:"barred"`
}

// A Cell is a broadcastable radio access point owned by one gNB.
// Everything but the barred flag is fixed at creation.
type Cell struct {
	Id             int
	SignalStrength int
	PlmnId         models.PlmnId
	Frequency      int
	CellType       string

	barred   bool
	barredMu sync.RWMutex
	source   SystemInfoSource
}

func NewCell(cfg CellConfig, source SystemInfoSource) *Cell {
	if source == nil {
		source = NewRandomSource(0)
	}
	return &Cell{
		Id:             cfg.Id,
		SignalStrength: cfg.SignalStrength,
		PlmnId:         cfg.PlmnId,
		Frequency:      cfg.Frequency,
		CellType:       cfg.CellType,
		barred:         cfg.Barred,
		source:         source,
	}
}

func (c *Cell) Barred() bool {
	c.barredMu.RLock()
	defer c.barredMu.RUnlock()
	return c.barred
}

func (c *Cell) SetBarred(barred bool) {
	c.barredMu.Lock()
	defer c.barredMu.Unlock()
	c.barred = barred
}

// BroadcastSystemInfo draws a fresh MIB/SIB pair on every call; nothing is
// cached, so two calls may disagree on bandwidth, scheduling info, TAC and
// the barred bit.
func (c *Cell) BroadcastSystemInfo() (models.MasterInfo, models.SystemInfo) {
	mib := models.MasterInfo{
		CellId:         c.Id,
		PlmnId:         c.PlmnId,
		Bandwidth:      c.source.Bandwidth(),
		SchedulingInfo: c.source.SchedulingInfo(),
	}
	sib := models.SystemInfo{
		PlmnId:               c.PlmnId,
		TrackingAreaCode:     c.source.TrackingAreaCode(),
		CellBarred:           c.source.CellBarred() || c.Barred(),
		AllowedAccessClasses: models.AllowedAccessClasses(),
		CellType:             c.CellType,
	}
	logger.RanLog.Debugf("[cell %d] MIB %+v SIB %+v", c.Id, mib, sib)
	return mib, sib
}
