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
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

// transitions encodes the attach order: each phase admits exactly one next
// procedure, so a later procedure can never run before an earlier one.
var transitions = map[models.UeState]models.Transition{
	models.Detached:     {To: models.CellSelected, Procedure: models.CellSelection},
	models.CellSelected: {To: models.RrcConnected, Procedure: models.RrcSetup},
	models.RrcConnected: {To: models.Registered, Procedure: models.Registration},
	models.Registered:   {To: models.PduSessionActive, Procedure: models.PduSessionEstablishment},
}

func NextProcedure(current models.UeState) (models.UeState, models.UeProcedure) {
	t, ok := transitions[current]
	if !ok {
		return current, models.NoProcedure
	}
	return t.To, t.Procedure
}
