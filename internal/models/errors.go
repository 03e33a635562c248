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

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrSelectionFailure       = errors.New("no suitable cell found")
	ErrAuthenticationFailure  = errors.New("ue not authenticated")
	ErrTunnelExists           = errors.New("tunnel already established")
	ErrUnknownSubscriber      = errors.New("unknown subscriber")
	ErrNoCellSelected         = &StateTransitionError{Procedure: RrcSetup, State: Detached.String(), Reason: "no cell selected"}
)

// StateTransitionError reports a procedure attempted from a state that does
// not allow it. It matches ErrInvalidStateTransition with errors.Is.
type StateTransitionError struct {
	Procedure UeProcedure
	State     string
	Reason    string
}

func (e *StateTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s not allowed in state %s: %s", e.Procedure, e.State, e.Reason)
	}
	return fmt.Sprintf("%s not allowed in state %s", e.Procedure, e.State)
}

func (e *StateTransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

func (e *StateTransitionError) Is(target error) bool {
	t, ok := target.(*StateTransitionError)
	if !ok {
		return false
	}
	return e.Procedure == t.Procedure && e.State == t.State && e.Reason == t.Reason
}

func NewStateTransitionError(procedure UeProcedure, state string, reason string) *StateTransitionError {
	return &StateTransitionError{Procedure: procedure, State: state, Reason: reason}
}
