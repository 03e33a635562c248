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

import "time"

const AuthAlgorithm5gAka = "5G-AKA"

// SubscriptionData is the per-subscriber record held by the UDM.
type SubscriptionData struct {
	Supi   string `yaml:"supi" json:"supi" valid:"required"`
	Dnn    string `yaml:"dnn,omitempty" json:"dnn,omitempty"`
	Snssai Snssai `yaml:"snssai,omitempty" json:"snssai,omitempty"`
}

type AuthResult struct {
	Authenticated bool   `json:"authenticated"`
	Algorithm     string `json:"algorithm"`
}

type RegistrationRecord struct {
	Supi         string    `json:"supi"`
	RegisteredAt time.Time `json:"registeredAt"`
}
