package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/haveachin/mcping/pkg/mcping/bedrock"
)

const defaultBedrockPort = 19132

var bedrockCmd = &cobra.Command{
	Use:   "bedrock <host> [port]",
	Short: "Pings a Bedrock Edition server",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := args[0]
		port := uint16(defaultBedrockPort)
		if len(args) > 1 {
			p, err := strconv.ParseUint(args[1], 10, 16)
			if err != nil {
				return fmt.Errorf("invalid port %q", args[1])
			}
			port = uint16(p)
		}

		pinger := bedrock.Pinger{Logger: logger}
		info, latency, err := pinger.Ping(
			context.Background(),
			host,
			port,
			viper.GetDuration("retry-timeout"),
			viper.GetInt("retries"),
		)
		if err != nil {
			return err
		}

		fmt.Printf("Name: %s\n", info.Name)
		fmt.Printf("Edition: %s\n", info.Edition)
		fmt.Printf("Version: %s (protocol %d)\n", info.Version, info.ProtocolVersion)
		fmt.Printf("Players: %d/%d\n", info.OnlinePlayers, info.MaxPlayers)
		if info.MapName != nil {
			fmt.Printf("Map: %s\n", *info.MapName)
		}
		if info.GameMode != nil {
			fmt.Printf("Game mode: %s\n", *info.GameMode)
		}
		fmt.Printf("Latency: %dms\n", latency.Milliseconds())
		return nil
	},
}

func init() {
	bedrockCmd.Flags().DurationP("retry-timeout", "t", 2*time.Second, "deadline for a single ping attempt")
	bedrockCmd.Flags().IntP("retries", "r", 3, "number of ping attempts")
	_ = viper.BindPFlag("retry-timeout", bedrockCmd.Flags().Lookup("retry-timeout"))
	_ = viper.BindPFlag("retries", bedrockCmd.Flags().Lookup("retries"))
}
