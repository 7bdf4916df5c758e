package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/haveachin/mcping/pkg/mcping"
)

const defaultJavaPort = 25565

var javaCmd = &cobra.Command{
	Use:   "java <host> [port]",
	Short: "Pings a Java Edition server",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := args[0]
		port := uint16(defaultJavaPort)
		if len(args) > 1 {
			p, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid port %q", args[1])
			}
			port = uint16(p)
		}

		pinger := mcping.Pinger{Logger: logger}
		info, latency, err := pinger.PingTimeout(host, port, viper.GetDuration("timeout"))
		if err != nil {
			return err
		}

		if info.Description != nil {
			fmt.Printf("Description: %s\n", info.Description)
		}
		if info.Version != nil {
			fmt.Printf("Version: %s (protocol %d)\n", info.Version.Name, info.Version.Protocol)
		}
		if info.Players != nil {
			fmt.Printf("Players: %d/%d\n", info.Players.Online, info.Players.Max)
			for _, sample := range info.Players.Sample {
				fmt.Printf("  %s\n", sample.Name)
			}
		}
		if info.ModInfo != nil {
			fmt.Printf("Mods: %d (%s)\n", len(info.ModInfo.ModList), info.ModInfo.Type)
		}
		fmt.Printf("Latency: %dms\n", latency.Milliseconds())
		return nil
	},
}

func init() {
	javaCmd.Flags().DurationP("timeout", "t", 5*time.Second, "total deadline for the ping")
	_ = viper.BindPFlag("timeout", javaCmd.Flags().Lookup("timeout"))
}
