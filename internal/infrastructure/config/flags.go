package config

import (
	"fmt"
	"io"

	"nettune/internal/domain/entities"
	"nettune/internal/domain/errors"

	"github.com/spf13/pflag"
)

// Flag names
const (
	ProfileFlag    = "profile"
	InterfaceFlag  = "interface"
	MTUFlag        = "mtu"
	VerboseFlag    = "verbose"
	OutputFlag     = "output"
	ConfigRootFlag = "config-root"
	BackupDirFlag  = "backup-dir"
)

// Flags registers command line flags using def as defaults
func (def Config) Flags(flags *pflag.FlagSet) {
	flags.StringP(ProfileFlag, "p", string(def.Profile), "Tuning profile: latency, balanced or throughput")
	flags.StringP(InterfaceFlag, "i", def.Interface, "Target interface (default: interface of the default route)")
	flags.Int(MTUFlag, def.MTU, "MTU to set on the interface (0 leaves it unchanged)")
	flags.BoolP(VerboseFlag, "v", def.Verbose, "Enable debug logging")
	flags.StringP(OutputFlag, "o", def.Output, "Output format: text or yaml")
	flags.String(ConfigRootFlag, def.Paths.Root, "Prefix for every file the tool owns")
	flags.String(BackupDirFlag, def.Paths.BackupDir, "Directory for pre-apply snapshots")
}

// CommandLineConfigLoader layers command line flags over environment defaults
type CommandLineConfigLoader struct {
	args   []string
	output io.Writer
}

// NewCommandLineConfigLoader creates a new CommandLineConfigLoader.
// args excludes the program name. Usage is written to output.
func NewCommandLineConfigLoader(args []string, output io.Writer) ConfigLoader {
	return &CommandLineConfigLoader{args: args, output: output}
}

// Load parses flags and the optional action argument
func (l *CommandLineConfigLoader) Load() (*Config, error) {
	config := loadFromEnvironment()

	flags := pflag.NewFlagSet("nettune", pflag.ContinueOnError)
	flags.SetOutput(l.output)
	flags.Usage = func() {
		fmt.Fprintln(l.output, "Usage: nettune [status|apply|revert|install-service|remove-service] [flags]")
		fmt.Fprintln(l.output, "Without an action the planned changes are printed and nothing is modified.")
		fmt.Fprintln(l.output)
		flags.PrintDefaults()
	}
	config.Flags(flags)

	if err := flags.Parse(l.args); err != nil {
		return nil, errors.NewValidationError("invalid command line", err)
	}

	if flags.NArg() > 1 {
		return nil, errors.NewValidationError(fmt.Sprintf("only one action may be given, got %v", flags.Args()), nil)
	}
	action, err := entities.ParseAction(flags.Arg(0))
	if err != nil {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown action %q", flags.Arg(0)), err)
	}
	config.Action = action

	profile, _ := flags.GetString(ProfileFlag)
	config.Profile = entities.ProfileName(profile)
	config.Interface, _ = flags.GetString(InterfaceFlag)
	config.MTU, _ = flags.GetInt(MTUFlag)
	config.Verbose, _ = flags.GetBool(VerboseFlag)
	config.Output, _ = flags.GetString(OutputFlag)
	config.Paths.Root, _ = flags.GetString(ConfigRootFlag)
	config.Paths.BackupDir, _ = flags.GetString(BackupDirFlag)

	if config.Verbose {
		config.Runtime.LogLevel = "debug"
	}

	if err := Validate(config); err != nil {
		return nil, err
	}
	return config, nil
}
