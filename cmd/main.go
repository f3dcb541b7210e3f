/*
Copyright 2025 NovaTrek Authors.

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

	"github.com/FredvanRijswijk/novatrek-engine"
	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/FredvanRijswijk/novatrek-engine/database"
	"github.com/FredvanRijswijk/novatrek-engine/internal/notification"
	"github.com/FredvanRijswijk/novatrek-engine/internal/processor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NovaTrekCLI encapsulates the root Cobra command.
type NovaTrekCLI struct {
	cmd *cobra.Command
}

// engineInstance holds the runtime engine and its configuration, shared across
// subcommands.
type engineInstance struct {
	engine *novatrek.NovaTrek
	cnf    *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads configuration and initializes the engine before any command
// runs.
func preRun(app *engineInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("novatrek.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newEngine, err := setupEngine(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.engine = newEngine
		app.cnf = cnf

		return nil
	}
}

// setupEngine wires the datasource and the payment processor client into a new
// engine instance.
func setupEngine(cfg *config.Configuration) (*novatrek.NovaTrek, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	proc := processor.NewClient(cfg.Processor.ApiUrl, cfg.Processor.SecretKey)
	newEngine, err := novatrek.NewNovaTrek(db, proc)
	if err != nil {
		return nil, fmt.Errorf("error creating engine: %v", err)
	}
	return newEngine, nil
}

// NewCLI creates the command-line interface for the engine.
func NewCLI() *NovaTrekCLI {
	var configFile string
	e := &engineInstance{}

	var rootCmd = &cobra.Command{
		Use:   "novatrek",
		Short: "Marketplace admission and transaction engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./novatrek.json", "Configuration file for the engine")

	rootCmd.PersistentPreRunE = preRun(e)

	rootCmd.AddCommand(serverCommands(e))
	rootCmd.AddCommand(workerCommands(e))
	rootCmd.AddCommand(migrateCommands(e))
	rootCmd.AddCommand(reconcileCommands(e))

	return &NovaTrekCLI{cmd: rootCmd}
}

func (w NovaTrekCLI) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
