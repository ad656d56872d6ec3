package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/soyeahso/obiefood/internal/config"
	"github.com/soyeahso/obiefood/internal/domain"
	"github.com/soyeahso/obiefood/internal/slots"
)

func newAskCmd() *cobra.Command {
	var (
		meal        string
		restriction string
		date        string
		userID      string
		showCard    bool
	)

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Run a one-shot menu query locally and print the spoken answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				cfg = config.Defaults()
			}

			engine, _, closeStore, err := buildDialog(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			slotMap := domain.Slots{}
			if meal != "" {
				slotMap[domain.SlotMeal] = domain.Slot{Name: domain.SlotMeal, Value: meal}
			}
			if restriction != "" {
				slotMap[domain.SlotRestriction] = domain.Slot{Name: domain.SlotRestriction, Value: restriction}
			}
			if date != "" {
				slotMap[domain.SlotDate] = domain.Slot{Name: domain.SlotDate, Value: date}
			}

			sessionID := "cli-" + uuid.New().String()
			ctx := context.Background()
			resp := engine.HandleTurn(ctx, domain.TurnRequest{
				RequestType: domain.RequestTypeIntent,
				Intent:      &domain.Intent{Name: domain.IntentOneshotMenu, Slots: slotMap},
				Session:     domain.SessionInfo{SessionID: sessionID, UserID: userID, New: true},
			})

			fmt.Println(resp.SpeechText)
			if showCard && resp.Card != nil {
				fmt.Println()
				fmt.Println(resp.Card.Title)
				fmt.Print(resp.Card.Body)
			}

			// Close the session like the host platform would.
			engine.HandleTurn(ctx, domain.TurnRequest{
				RequestType: domain.RequestTypeSessionEnded,
				Session:     domain.SessionInfo{SessionID: sessionID},
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&meal, "meal", "", "meal to ask about (lunch, dinner)")
	cmd.Flags().StringVar(&restriction, "restriction", "", "dietary restriction (vegan, vegetarian, gluten free)")
	cmd.Flags().StringVar(&date, "date", "", "date to ask about (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&userID, "user", "", "user id for saved preference lookup")
	cmd.Flags().BoolVar(&showCard, "card", false, "also print the display card")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if restriction != "" {
			if _, ok := slots.CanonicalRestriction(restriction); !ok {
				return fmt.Errorf("unknown restriction %q", restriction)
			}
		}
		return nil
	}

	return cmd
}
