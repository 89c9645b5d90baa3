package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show assistant provider availability and draft state",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		st, err := d.client.Status(cmd.Context())
		if err != nil {
			return err
		}
		yesNo := func(b bool) string {
			if b {
				return "available"
			}
			return "unavailable"
		}
		fmt.Printf("Gemini: %s\nGroq:   %s\n", yesNo(st.Gemini), yesNo(st.Groq))
		if d.store.HasDraft() {
			fmt.Println("A saved draft exists; run 'wizard run' to resume it.")
		}
		if ref, ok, _ := d.store.ActiveContext(); ok {
			fmt.Printf("Active %s: %s (%s)\n", ref.Type, ref.Name, ref.Code)
		}
		return nil
	},
}

var discardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Delete the saved draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		if !d.store.HasDraft() {
			fmt.Println("No draft to discard")
			return nil
		}
		if err := d.store.ClearDraft(); err != nil {
			return err
		}
		fmt.Println("Draft discarded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(discardCmd)
}
