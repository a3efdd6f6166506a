/*
Copyright 2025 Leadrail Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/leadrail/leadrail"
	"github.com/leadrail/leadrail/config"
	"github.com/leadrail/leadrail/database"
	"github.com/leadrail/leadrail/internal/notification"
)

// Leadrail represents the CLI application, encapsulating the root Cobra command.
type Leadrail struct {
	cmd *cobra.Command
}

// leadrailInstance holds the engine instance and its configuration so
// subcommands share one initialized runtime.
type leadrailInstance struct {
	engine *leadrail.Leadrail
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and initializes the engine before any
// subcommand executes.
func preRun(app *leadrailInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("leadrail.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newEngine, err := setupLeadrail(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.engine = newEngine
		app.cnf = cnf

		return nil
	}
}

// setupLeadrail connects the datasource and builds the engine from it.
func setupLeadrail(cfg *config.Configuration) (*leadrail.Leadrail, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newEngine, err := leadrail.NewLeadrail(db)
	if err != nil {
		return nil, fmt.Errorf("error creating leadrail: %v", err)
	}
	return newEngine, nil
}

// NewCLI assembles the root command and its subcommands.
func NewCLI() *Leadrail {
	var configFile string
	b := &leadrailInstance{}

	var rootCmd = &cobra.Command{
		Use:   "leadrail",
		Short: "Multi-channel outreach queue and CRM sync engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./leadrail.json", "Configuration file for leadrail")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &Leadrail{cmd: rootCmd}
}

func (w Leadrail) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
