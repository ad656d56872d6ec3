package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soyeahso/obiefood/internal/config"
	"github.com/soyeahso/obiefood/internal/version"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show skill status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("Obie food %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			// Load config
			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
				}
				return nil
			}

			fmt.Printf("Gateway: port=%d bind=%s auth=%s\n",
				cfg.Gateway.Port, cfg.Gateway.Bind, cfg.Gateway.Auth.Mode)
			if cfg.Skill.AppID != "" {
				fmt.Printf("Skill:   appId=%s\n", cfg.Skill.AppID)
			} else {
				fmt.Println("Skill:   appId not set (all applications accepted)")
			}

			fmt.Printf("Menu:    baseUrl=%s timezone=%s timeout=%dms\n",
				cfg.Menu.BaseURL, cfg.Menu.Timezone, cfg.Menu.RequestTimeoutMs)

			fmt.Printf("Prefs:   store=%s abandon=%dms\n", cfg.Prefs.Store, cfg.Prefs.FetchAbandonMs)
			if cfg.Prefs.Store == "redis" {
				fmt.Printf("Redis:   addr=%s db=%d\n", cfg.Prefs.RedisAddr, cfg.Prefs.RedisDB)
			}

			fmt.Printf("Session: idleMinutes=%d\n", cfg.Session.IdleMinutes)

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
