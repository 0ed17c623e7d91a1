// Package config defines the command line and configuration file schema.
package config

import (
	"github.com/Alia5/keyscan/internal/cmd"
	"github.com/Alia5/keyscan/internal/log"
)

// CLI is the root kong grammar.
type CLI struct {
	Config string     `help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"KEYSCAN_CONFIG"`
	Log    log.Config `embed:"" prefix:"log."`

	Run       cmd.Run           `cmd:"" help:"Scan the terminal keyboard and print classified key events"`
	Replay    cmd.Replay        `cmd:"" help:"Run a sample script through the scanner and print the events"`
	ConfigCmd cmd.ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
