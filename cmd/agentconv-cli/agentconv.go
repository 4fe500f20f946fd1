package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	command := newAgentConvCliCommand()
	cobra.CheckErr(command.Execute())
}

func newAgentConvCliCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agentconv-cli [COMMAND] [OPTIONS]",
		Short:         "Conversational payload converter command-line interface",
		Version:       "v0.1.0",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.AddCommand(newConvertCommand())
	cmd.AddCommand(newCallCommand())
	viper.SetOptions(viper.WithLogger(slog.Default()))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.agentconv/")
	viper.AddConfigPath(".")
	return cmd
}
