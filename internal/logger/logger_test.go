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

package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestParseAndSetLogLevel(t *testing.T) {
	defer SetLogLevel(logrus.InfoLevel)

	assert.NoError(t, ParseAndSetLogLevel("debug"))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	assert.NoError(t, ParseAndSetLogLevel(""))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel(), "empty level keeps the current one")

	assert.Error(t, ParseAndSetLogLevel("loud"))
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestEntriesCarryComponent(t *testing.T) {
	assert.Equal(t, "AMF", AmfLog.Data["component"])
	assert.Equal(t, "RRC", RanLog.Data["category"])
}
