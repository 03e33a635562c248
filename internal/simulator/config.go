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

package simulator

import (
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/ran"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/components/utils"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/models"
)

const (
	DefaultSbiPort      uint16 = 8080
	DefaultOamPort      uint16 = 8081
	DefaultMetricsPort  uint16 = 9090
	DefaultUeSubnet            = "12.1.0.0/16"
	DefaultProbePackets        = 10
	MaxProbePackets            = 10000
)

type LoggerConfig struct {
	Level        string `yaml:"level" valid:"in(trace|debug|info|warn|warning|error|fatal|panic)"`
	ReportCaller bool   `yaml:"reportCaller"`
}

type AppConfig struct {
	HttpVersion   uint16        `yaml:"httpVersion"`
	Fqdn          string        `yaml:"fqdn"`
	SbiPort       uint16        `yaml:"sbiPort"`
	OamPort       uint16        `yaml:"oamPort"`
	MetricsPort   uint16        `yaml:"metricsPort"`
	InitOnStartup bool          `yaml:"initOnStartup"`
	Logger        *LoggerConfig `yaml:"logger,omitempty"`
	/* Custom configuration parameters */
	NetConfig *NetworkConfig `yaml:"simulationProfile"`
}

type GnbConfig struct {
	Name  string           `yaml:"name" json:"name" valid:"required"`
	Cells []ran.CellConfig `yaml:"cells" json:"cells"`
}

type NetworkConfig struct {
	Plmn           models.PlmnId             `yaml:"plmn" json:"plmn" valid:"required,numeric,stringlength(5|6)"`
	SessionVariant models.SessionVariant     `yaml:"sessionVariant" json:"sessionVariant" valid:"in(core|direct)"`
	BroadcastSeed  uint64                    `yaml:"broadcastSeed" json:"broadcastSeed"`
	UeSubnet       string                    `yaml:"ueSubnet" json:"ueSubnet"`
	Dnn            string                    `yaml:"dnn" json:"dnn"`
	TrafficProfile string                    `yaml:"trafficProfile" json:"trafficProfile" valid:"in(web|video|iot|sip)"`
	ProbePackets   int                       `yaml:"probePackets" json:"probePackets"`
	Gnb            GnbConfig                 `yaml:"gnb" json:"gnb"`
	Ues            []ran.UeConfig            `yaml:"ues" json:"ues"`
	Subscribers    []models.SubscriptionData `yaml:"subscribers" json:"subscribers"`
}

// LoadConfig reads, defaults and validates the YAML configuration at path.
// Validation failures come back as govalidator.Errors.
func LoadConfig(configPath string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file: %w", err)
	}
	cfg.setDefaults()

	if _, err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitConfig is LoadConfig for startup paths: any error is fatal.
func InitConfig(configPath string) *AppConfig {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		logger.CfgLog.Fatalf("invalid configuration %s: %v", configPath, err)
	}
	return cfg
}

func (cfg *AppConfig) setDefaults() {
	if cfg.HttpVersion == 0 {
		cfg.HttpVersion = 2
	}
	if cfg.SbiPort == 0 {
		cfg.SbiPort = DefaultSbiPort
	}
	if cfg.OamPort == 0 {
		cfg.OamPort = DefaultOamPort
	}
	if cfg.MetricsPort == 0 {
		cfg.MetricsPort = DefaultMetricsPort
	}
	if cfg.NetConfig != nil {
		cfg.NetConfig.SetDefaults()
	}
}

func (cfg *AppConfig) Validate() (bool, error) {
	var errs govalidator.Errors
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		errs = append(errs, flatten(err)...)
	}
	if cfg.HttpVersion != 1 && cfg.HttpVersion != 2 {
		errs = append(errs, fmt.Errorf("httpVersion: unsupported version %d", cfg.HttpVersion))
	}
	if cfg.InitOnStartup && cfg.NetConfig == nil {
		errs = append(errs, errors.New("simulationProfile: must be defined when initOnStartup is set"))
	}
	if cfg.NetConfig != nil {
		if _, err := cfg.NetConfig.semanticChecks(); err != nil {
			errs = append(errs, flatten(err)...)
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

func (c *NetworkConfig) SetDefaults() {
	if c.SessionVariant == "" {
		c.SessionVariant = models.SessionVariantCore
	}
	if c.UeSubnet == "" {
		c.UeSubnet = DefaultUeSubnet
	}
	if c.TrafficProfile == "" {
		c.TrafficProfile = "web"
	}
	if c.ProbePackets == 0 {
		c.ProbePackets = DefaultProbePackets
	}
	if c.Gnb.Name == "" {
		c.Gnb.Name = "gnb-" + string(c.Plmn)
	}
}

// Validate checks a simulation profile on its own, as received on the OAM
// configure endpoint.
func (c *NetworkConfig) Validate() (bool, error) {
	var errs govalidator.Errors
	if _, err := govalidator.ValidateStruct(c); err != nil {
		errs = append(errs, flatten(err)...)
	}
	if _, err := c.semanticChecks(); err != nil {
		errs = append(errs, flatten(err)...)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

func (c *NetworkConfig) semanticChecks() (bool, error) {
	var errs govalidator.Errors
	if len(c.Gnb.Cells) == 0 {
		errs = append(errs, errors.New("gnb.cells: at least one cell is required"))
	}
	seen := make(map[int]bool)
	for _, cell := range c.Gnb.Cells {
		if seen[cell.Id] {
			errs = append(errs, fmt.Errorf("gnb.cells: duplicate cell id %d", cell.Id))
		}
		seen[cell.Id] = true
	}
	if len(c.Ues) == 0 {
		errs = append(errs, errors.New("ues: at least one UE is required"))
	}
	supis := make(map[string]bool)
	for _, ue := range c.Ues {
		if supis[ue.Supi] {
			errs = append(errs, fmt.Errorf("ues: duplicate supi %s", ue.Supi))
		}
		supis[ue.Supi] = true
	}
	if err := checkUeSubnet(c.UeSubnet); err != nil {
		errs = append(errs, err)
	}
	if c.ProbePackets < 0 || c.ProbePackets > MaxProbePackets {
		errs = append(errs, fmt.Errorf("probePackets: must be between 0 and %d, got %d", MaxProbePackets, c.ProbePackets))
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// checkUeSubnet accepts IPv4 subnets the IPAM can enumerate.
func checkUeSubnet(subnet string) error {
	if !govalidator.IsCIDR(subnet) {
		return fmt.Errorf("ueSubnet: %q is not a CIDR", subnet)
	}
	_, ipNet, err := net.ParseCIDR(subnet)
	if err != nil {
		return fmt.Errorf("ueSubnet: %w", err)
	}
	if ipNet.IP.To4() == nil {
		return fmt.Errorf("ueSubnet: %s is not an IPv4 subnet", subnet)
	}
	if ones, _ := ipNet.Mask.Size(); ones < utils.MinPrefixLen {
		return fmt.Errorf("ueSubnet: prefix /%d is wider than /%d", ones, utils.MinPrefixLen)
	}
	return nil
}

func flatten(err error) []error {
	var vErrs govalidator.Errors
	if errors.As(err, &vErrs) {
		return vErrs.Errors()
	}
	return []error{err}
}

func (cfg *AppConfig) Dumps() string {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		logger.CfgLog.Errorf("could not dump configuration: %v", err)
		return ""
	}
	return string(d)
}
