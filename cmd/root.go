package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:           "mcping",
		Short:         "Queries the status of Minecraft servers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = newLogger(viper.GetString("environment"), viper.GetString("log-encoder"))
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
)

func init() {
	viper.SetEnvPrefix("mcping")
	viper.AutomaticEnv()

	pf := rootCmd.PersistentFlags()
	pf.StringP("environment", "e", "prod", "logging environment (nop, dev or prod)")
	pf.StringP("log-encoder", "l", "console", "log encoder (console or json)")
	_ = viper.BindPFlag("environment", pf.Lookup("environment"))
	_ = viper.BindPFlag("log-encoder", pf.Lookup("log-encoder"))

	rootCmd.AddCommand(javaCmd)
	rootCmd.AddCommand(bedrockCmd)
}

func newLogger(env, encoder string) (*zap.Logger, error) {
	switch env {
	case "nop":
		return zap.NewNop(), nil
	case "dev":
		return zap.NewDevelopment()
	case "prod":
		cfg := zap.NewProductionConfig()
		cfg.Encoding = encoder
		if encoder == "console" {
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
		cfg.DisableCaller = true
		cfg.DisableStacktrace = true
		return cfg.Build()
	default:
		return nil, fmt.Errorf("unsupported environment %q", env)
	}
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
