package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/manaforge/internal/app"
	"github.com/MrSnakeDoc/manaforge/internal/decks"
	"github.com/MrSnakeDoc/manaforge/internal/domain"
	"github.com/MrSnakeDoc/manaforge/internal/logger"
	"github.com/MrSnakeDoc/manaforge/internal/store"
	"github.com/MrSnakeDoc/manaforge/internal/utils"
)

var (
	jsonOutput bool
	deckType   string
	deckCover  string
	cardQty    int
)

var decksCmd = &cobra.Command{
	Use:   "decks",
	Short: "Inspect and edit the stored decks without the server",
	Long: `Decks works directly on the configured storage backend. Changes made
here are not pushed to clients connected to a running server until
their next refresh.`,
}

var decksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every deck",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *decks.Store, args []string) error {
		all := s.List(ctx)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), all)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCARDS")
		for _, d := range all {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", d.ID, d.Name, d.Type, d.TotalCards())
		}
		return tw.Flush()
	}),
}

var decksShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one deck and its entries",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *decks.Store, args []string) error {
		d, err := deckArg(ctx, s, args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), d)
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "#%d %s (%s), %d cards\n", d.ID, d.Name, d.Type, d.TotalCards())
		for _, e := range d.CardEntries {
			_, _ = fmt.Fprintf(out, "  card %d x%d\n", e.CardID, e.Qty)
		}
		return nil
	}),
}

var decksCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty deck",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *decks.Store, args []string) error {
		cover := deckCover
		if cover == "" {
			cover = cfg.DefaultCover
		}
		d, err := s.Create(ctx, args[0], deckType, cover)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), d)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created deck #%d %s\n", d.ID, d.Name)
		return nil
	}),
}

var decksAddCmd = &cobra.Command{
	Use:   "add <deck-id> <card-id>",
	Short: "Add copies of a card to a deck",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *decks.Store, args []string) error {
		d, cardID, err := deckAndCard(ctx, s, args)
		if err != nil {
			return err
		}
		entry, err := s.AddCard(ctx, d.ID, cardID, cardQty)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deck #%d now holds card %d x%d\n", d.ID, entry.CardID, entry.Qty)
		return nil
	}),
}

var decksRemoveCmd = &cobra.Command{
	Use:   "remove <deck-id> <card-id>",
	Short: "Remove copies of a card from a deck, --qty 0 removes the entry",
	Args:  cobra.ExactArgs(2),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *decks.Store, args []string) error {
		d, cardID, err := deckAndCard(ctx, s, args)
		if err != nil {
			return err
		}
		changed, err := s.RemoveCard(ctx, d.ID, cardID, cardQty)
		if err != nil {
			return err
		}
		if !changed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "card %d is not in deck #%d\n", cardID, d.ID)
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deck #%d updated\n", d.ID)
		return nil
	}),
}

var decksDeleteCmd = &cobra.Command{
	Use:   "delete <deck-id>",
	Short: "Delete a deck",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, s *decks.Store, args []string) error {
		d, err := deckArg(ctx, s, args[0])
		if err != nil {
			return err
		}
		if _, err := s.DeleteDeck(ctx, d.ID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted deck #%d %s\n", d.ID, d.Name)
		return nil
	}),
}

func init() {
	decksCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	decksCreateCmd.Flags().StringVar(&deckType, "type", "", "deck type, e.g. Fire")
	decksCreateCmd.Flags().StringVar(&deckCover, "cover", "", "cover URL (default: configured default cover)")
	decksAddCmd.Flags().IntVar(&cardQty, "qty", 1, "copies to add")
	decksRemoveCmd.Flags().IntVar(&cardQty, "qty", 1, "copies to remove, 0 removes the entry")

	decksCmd.AddCommand(decksListCmd, decksShowCmd, decksCreateCmd, decksAddCmd, decksRemoveCmd, decksDeleteCmd)
}

type storeFunc func(ctx context.Context, cmd *cobra.Command, s *decks.Store, args []string) error

// withStore opens the configured slot for the duration of one command.
func withStore(fn storeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		log, err := logger.New("warn", cfg.PrettyLog)
		if err != nil {
			return err
		}
		slot, err := app.OpenSlot(ctx, cfg, log)
		if err != nil {
			return err
		}
		if c, ok := slot.(store.Closer); ok {
			defer utils.CloseLogged(log, cfg.StorageBackend, c)
		}
		s := decks.New(slot, decks.WithLogger(log), decks.WithMaxCopies(cfg.MaxCopies))
		return fn(ctx, cmd, s, args)
	}
}

func deckArg(ctx context.Context, s *decks.Store, raw string) (domain.Deck, error) {
	id, err := decks.ParseID(raw)
	if err != nil {
		return domain.Deck{}, err
	}
	d, ok := s.GetByID(ctx, id)
	if !ok {
		return domain.Deck{}, fmt.Errorf("deck %d: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

func deckAndCard(ctx context.Context, s *decks.Store, args []string) (domain.Deck, int, error) {
	d, err := deckArg(ctx, s, args[0])
	if err != nil {
		return domain.Deck{}, 0, err
	}
	cardID, err := strconv.Atoi(args[1])
	if err != nil || cardID <= 0 {
		return domain.Deck{}, 0, fmt.Errorf("invalid card id %q: %w", args[1], domain.ErrValidation)
	}
	return d, cardID, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
