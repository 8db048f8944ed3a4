package cmd

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/tgsampler/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("tgsampler doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, using defaults + env)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}
	masked := cfg.MaskedCopy()

	fmt.Println()
	fmt.Println("  Telegram:")
	if cfg.Telegram.Token == "" {
		fmt.Printf("    %-12s NOT SET (set TGSAMPLER_TELEGRAM_TOKEN)\n", "Token:")
	} else {
		fmt.Printf("    %-12s %s\n", "Token:", masked.Telegram.Token)
	}
	if cfg.Telegram.Proxy != "" {
		fmt.Printf("    %-12s %s\n", "Proxy:", cfg.Telegram.Proxy)
	}

	fmt.Println()
	fmt.Println("  Sampling:")
	fmt.Printf("    %-12s %t\n", "Enabled:", cfg.Sampling.IsEnabled())
	fmt.Printf("    %-12s %s\n", "Listeners:", strings.Join(activeListeners(&cfg.Sampling), ", "))
	fmt.Printf("    %-12s mention_only=%t respond_to_dms=%t silent=%t\n", "Triggers:",
		cfg.Sampling.IsMentionOnly(), cfg.Sampling.RespondsToDMs(), cfg.Sampling.SilentMode)
	fmt.Printf("    %-12s user=%d/min chat=%d/min\n", "Rate limit:",
		cfg.Sampling.RateLimitPerUser, cfg.Sampling.RateLimitPerChat)
	fmt.Printf("    %-12s %d-%d chars, ignore_commands=%t, %d keyword trigger(s)\n", "Text filter:",
		cfg.Sampling.MinMessageLength, cfg.Sampling.MaxMessageLength,
		cfg.Sampling.IgnoresCommands(), len(cfg.Sampling.KeywordTriggers))
	fmt.Printf("    %-12s allow=%d block=%d chats, allow=%d block=%d admin=%d users\n", "Access:",
		len(cfg.Sampling.AllowedChats), len(cfg.Sampling.BlockedChats),
		len(cfg.Sampling.AllowedUsers), len(cfg.Sampling.BlockedUsers), len(cfg.Sampling.AdminUsers))

	fmt.Println()
	fmt.Println("  Telemetry:")
	if cfg.Telemetry.Enabled {
		fmt.Printf("    %-12s %s (%s)\n", "Endpoint:", cfg.Telemetry.Endpoint, protocolOrDefault(cfg.Telemetry.Protocol))
	} else {
		fmt.Printf("    %-12s disabled\n", "Status:")
	}
}

// activeListeners returns the enabled listener kinds, sorted.
func activeListeners(s *config.SamplingConfig) []string {
	var active []string
	for kind, enabled := range s.Listeners {
		if enabled {
			active = append(active, kind)
		}
	}
	sort.Strings(active)
	if len(active) == 0 {
		return []string{"(none)"}
	}
	return active
}

func protocolOrDefault(p string) string {
	if p == "" {
		return "grpc"
	}
	return p
}
