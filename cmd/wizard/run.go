package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"casewizard/internal/wizard"
	"casewizard/internal/wizard/sessionguard"
	"casewizard/internal/wizard/submit"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start or resume the configuration wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDeps()
		if err != nil {
			return err
		}
		return runWizard(cmd.Context(), d)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runWizard(parent context.Context, d *deps) error {
	in := bufio.NewReader(os.Stdin)
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	eng := resumeOrStart(in, d)

	guard := sessionguard.New(d.client, d.store, eng, sessionguard.Callbacks{
		Notify: func(msg string) { fmt.Println("\n" + msg) },
		Redirect: func() {
			fmt.Println("Run 'wizard login' to sign in again; your draft is saved.")
			cancel()
		},
	})
	go guard.Run(ctx)

	return formLoop(ctx, in, d, eng, guard)
}

func resumeOrStart(in *bufio.Reader, d *deps) *wizard.Engine {
	if d.store.HasDraft() {
		var st wizard.State
		if ok, err := d.store.LoadDraft(&st); err == nil && ok {
			if promptYesNo(in, "A saved draft exists. Resume it?") {
				eng, err := wizard.Resume(st, d.store)
				if err == nil {
					return eng
				}
				fmt.Printf("Could not resume draft: %v\n", err)
			} else if err := d.store.ClearDraft(); err != nil {
				fmt.Printf("Could not discard draft: %v\n", err)
			}
		}
	}
	return wizard.New(d.store)
}

// formLoop renders one step at a time until the review step is confirmed
// or the user quits. Typed commands: :back, :quit.
func formLoop(ctx context.Context, in *bufio.Reader, d *deps, eng *wizard.Engine, guard *sessionguard.Guardian) error {
	for {
		if ctx.Err() != nil || guard.Expired() {
			return nil
		}

		form := eng.Render()
		fmt.Printf("\n== %s ==\n", form.Title)

		if eng.State().AtLastStep() {
			printSummary(eng.State())
			if !promptYesNo(in, "Create this record?") {
				input, quit := collectCommandOnly(in)
				if quit {
					return saveAndExit(eng)
				}
				if input == ":back" {
					eng.Retreat(wizard.Input{})
				}
				continue
			}
			return doSubmit(ctx, d, eng, guard)
		}

		input, action := collectInput(in, form)
		switch action {
		case actionQuit:
			return saveAndExit(eng)
		case actionBack:
			eng.Retreat(input)
			continue
		}

		warns, err := eng.Advance(input)
		if errors.Is(err, wizard.ErrConversationalMode) {
			return runChat(ctx, in, d)
		}
		if errors.Is(err, wizard.ErrUnsupportedProfile) {
			fmt.Println("User management is configured elsewhere; pick project, case, or intelligent.")
			continue
		}
		if err != nil {
			fmt.Printf("Could not save step: %v\n", err)
			continue
		}
		for _, w := range warns {
			fmt.Println("note:", w)
		}
	}
}

func doSubmit(ctx context.Context, d *deps, eng *wizard.Engine, guard *sessionguard.Guardian) error {
	adapter := submit.New(d.client, d.store, func(c context.Context) {
		guard.HandleSessionExpired(c)
	})
	res, err := adapter.Submit(ctx, eng.State())
	if errors.Is(err, submit.ErrSessionExpired) {
		fmt.Println("Your session expired. The draft is saved; log in and run the wizard again.")
		return nil
	}
	if err != nil {
		fmt.Printf("Creation failed: %v\n", err)
		fmt.Println("Your draft is saved; fix the details and try again.")
		return saveAndExit(eng)
	}
	fmt.Printf("Created %s %q (%s)\nOpen: %s\n", res.Record.Type, res.Record.Name, res.Record.Code, res.WorkspaceURL)
	return nil
}

func saveAndExit(eng *wizard.Engine) error {
	if err := eng.SaveDraft(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	fmt.Println("Draft saved. Run 'wizard run' to pick up where you left off.")
	return nil
}

type inputAction int

const (
	actionNone inputAction = iota
	actionBack
	actionQuit
)

// collectInput prompts for every field of the form. The first answer may
// instead be a command.
func collectInput(in *bufio.Reader, form wizard.Form) (wizard.Input, inputAction) {
	input := wizard.Input{Fields: map[string]string{}, Tables: map[string][]wizard.Row{}}

	for i, f := range form.Fields {
		if f.Kind == wizard.FieldTable {
			input.Tables[f.ID] = collectTable(in, f)
			continue
		}

		prompt := f.Label
		if len(f.Options) > 0 {
			prompt += " (" + strings.Join(f.Options, " / ") + ")"
		}
		current := f.Value
		if f.CustomValue != "" {
			current = f.CustomValue
		}
		if current != "" {
			prompt += " [" + current + "]"
		}
		answer := promptLine(in, prompt+": ")

		if i == 0 {
			switch answer {
			case ":back":
				return input, actionBack
			case ":quit":
				return input, actionQuit
			}
		}
		if answer == "" {
			answer = current
		}
		if f.AllowCustom && answer != "" && !containsOption(f.Options, answer) {
			input.Fields[f.ID] = wizard.CustomOption
			input.Fields[f.ID+"_custom"] = answer
			continue
		}
		input.Fields[f.ID] = answer
	}
	return input, actionNone
}

func collectTable(in *bufio.Reader, f wizard.Field) []wizard.Row {
	fmt.Printf("%s (blank %s ends the list)\n", f.Label, f.Columns[0].Label)
	rows := append([]wizard.Row{}, f.Rows...)
	for i, row := range rows {
		fmt.Printf("  %d. %s\n", i+1, strings.Join(rowValues(row, f.Columns), " | "))
	}
	for {
		row := wizard.Row{}
		for j, col := range f.Columns {
			prompt := "  " + col.Label
			if len(col.Options) > 0 {
				prompt += " (" + strings.Join(col.Options, " / ") + ")"
			}
			v := promptLine(in, prompt+": ")
			if j == 0 && v == "" {
				return rows
			}
			row[col.ID] = v
		}
		rows = append(rows, row)
	}
}

func collectCommandOnly(in *bufio.Reader) (string, bool) {
	answer := promptLine(in, "Type :back to edit, or :quit to save and exit: ")
	return answer, answer == ":quit"
}

func printSummary(st wizard.State) {
	fmt.Printf("Profile: %s\n", st.ProfileType)
	for _, id := range wizard.StepIDs(st.ProfileType) {
		payload, ok := st.Data[id]
		if !ok {
			continue
		}
		fmt.Printf("  %s: %+v\n", id, payload)
	}
}

func rowValues(row wizard.Row, cols []wizard.Column) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, row[c.ID])
	}
	return out
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return true
		}
	}
	return false
}

func promptLine(in *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := in.ReadString('\n')
	if err != nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line)
}

func promptYesNo(in *bufio.Reader, prompt string) bool {
	answer := strings.ToLower(promptLine(in, prompt+" [y/N]: "))
	return answer == "y" || answer == "yes"
}
