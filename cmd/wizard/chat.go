package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"casewizard/internal/types"
	"casewizard/internal/wizard/apiclient"
	"casewizard/internal/wizard/conversation"
	"casewizard/internal/wizard/submit"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Configure a project or case through the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())
		return runChat(cmd.Context(), in, d)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context, in *bufio.Reader, d *deps) error {
	eng := conversation.New(d.client, d.store, func() string {
		cred, ok, err := d.store.Credential()
		if err != nil || !ok {
			return ""
		}
		return cred.ProviderKey
	})

	for {
		avail, err := eng.Start(ctx)
		if err != nil {
			return err
		}
		if avail.Available {
			break
		}
		fmt.Println("The assistant is not available right now.")
		if avail.ProviderStatus != (types.StatusResponse{}) {
			fmt.Printf("Providers - gemini: %v, groq: %v\n", avail.ProviderStatus.Gemini, avail.ProviderStatus.Groq)
		}
		fmt.Println("  1. Provide your own provider API key")
		fmt.Println("  2. Try anyway")
		fmt.Println("  3. Use the step-by-step forms instead")
		choice := promptLine(in, "Choose [1-3]: ")
		if choice == "1" {
			key := promptLine(in, "Provider API key: ")
			if key != "" {
				cred, _, _ := d.store.Credential()
				cred.ProviderKey = key
				if err := d.store.SetCredential(cred); err != nil {
					fmt.Printf("Could not store key: %v\n", err)
				}
			}
			continue
		}
		if choice == "3" {
			return runWizard(ctx, d)
		}
		if choice != "2" {
			continue
		}
		break
	}

	fmt.Println("Tell me about the project or case you are setting up. Type :quit to leave.")

	var lastActions []string
	for {
		if ctx.Err() != nil {
			return nil
		}
		msg := promptLine(in, "> ")
		switch msg {
		case "":
			continue
		case ":quit":
			return nil
		case ":reset":
			eng.Reset()
			fmt.Println("Conversation cleared.")
			continue
		}
		if n, err := strconv.Atoi(msg); err == nil && n >= 1 && n <= len(lastActions) {
			msg = lastActions[n-1]
		}

		res, err := eng.SendTurn(ctx, msg)
		if errors.Is(err, conversation.ErrTurnInFlight) {
			fmt.Println("Still thinking, hold on.")
			continue
		}
		if errors.Is(err, apiclient.ErrUnauthorized) {
			fmt.Println("Your session expired. Log in again with 'wizard login'; the conversation stays on this machine.")
			return nil
		}
		if err != nil {
			fmt.Printf("That didn't go through (%v); just send the next message to retry.\n", err)
			continue
		}

		fmt.Printf("\n%s\n", res.Reply)
		fmt.Printf("[progress %d%%]\n", res.Progress)
		lastActions = res.QuickActions
		for i, a := range lastActions {
			fmt.Printf("  %d. %s\n", i+1, a)
		}
		if res.Complete && res.Record != nil {
			fmt.Printf("\nCreated %s %s\nOpen: %s\n", res.Record.Type, res.Record.ID, submit.WorkspaceURL(*res.Record))
			return nil
		}
	}
}
