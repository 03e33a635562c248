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

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/asaskevich/govalidator"
	"github.com/urfave/cli"

	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/logger"
	"gitlab.eurecom.fr/open-exposure/coresim/attach-simulator/internal/simulator"
)

func main() {
	defer func() {
		if p := recover(); p != nil {
			// Print stack for panic to log. Fatalf() will let program exit.
			logger.AppLog.Fatalf("panic: %v\n%s", p, string(debug.Stack()))
		}
	}()

	app := cli.NewApp()
	app.Name = "attach-simulator"
	app.Usage = "5G UE initial access and attach simulator"
	app.Action = action
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "config/attachsim.yaml",
			Usage: "Load configuration from `FILE`",
		},
		cli.StringFlag{
			Name:  "log-level, l",
			Usage: "Override the configured log level (trace|debug|info|warn|error)",
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.AppLog.Errorf("attach-simulator Run Error: %v", err)
		os.Exit(1)
	}
}

func action(c *cli.Context) error {
	cfg, err := simulator.LoadConfig(c.String("config"))
	if err != nil {
		var validErrs govalidator.Errors
		if errors.As(err, &validErrs) {
			for _, validErr := range validErrs.Errors() {
				logger.CfgLog.Errorf("%+v", validErr)
			}
		} else {
			logger.CfgLog.Errorf("%+v", err)
		}
		logger.CfgLog.Errorf("[-- PLEASE REFER TO SAMPLE CONFIG FILE COMMENTS --]")
		return fmt.Errorf("failed to initialize")
	}

	level := c.String("log-level")
	if level == "" && cfg.Logger != nil {
		level = cfg.Logger.Level
	}
	if err := logger.ParseAndSetLogLevel(level); err != nil {
		return err
	}
	if cfg.Logger != nil {
		logger.SetReportCaller(cfg.Logger.ReportCaller)
	}

	logger.AppLog.Infoln(c.App.Name)
	simulator.NewAttachSimulatorApp(cfg).Run()
	return nil
}
