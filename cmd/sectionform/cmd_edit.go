package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/renderers/tui"
)

var (
	editPageID string
	editOrder  int
)

// newEditor builds the terminal editor. Tests swap it for a scripted driver.
var newEditor = func(out io.Writer) (*tui.Renderer, error) {
	return tui.New(tui.WithOutput(out))
}

var editCmd = &cobra.Command{
	Use:   "edit [section-type]",
	Short: "Edit a section interactively on the terminal",
	Long: `Walks the section form on the terminal. Each answer is applied as an
edit, so repairs and rejected values are reported immediately.

The final document is printed as JSON. With --page the section is also
saved to the configured store.`,
	Args: cobra.ExactArgs(1),
	RunE: editSection,
}

func init() {
	editCmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML document to start from")
	editCmd.Flags().StringVar(&editPageID, "page", "", "page id to save the section under")
	editCmd.Flags().IntVar(&editOrder, "order", 0, "order index within the page")
}

func editSection(cmd *cobra.Command, args []string) error {
	runtime, err := runtimeOrErr()
	if err != nil {
		return err
	}
	orch := runtime.Orchestrator
	typeID := args[0]

	var pageID uuid.UUID
	if raw := strings.TrimSpace(editPageID); raw != "" {
		if pageID, err = uuid.Parse(raw); err != nil {
			return fmt.Errorf("invalid page id %q: %w", raw, err)
		}
	}

	var session *form.Session
	if strings.TrimSpace(dataFile) == "" {
		session, err = orch.NewSession(typeID, form.WithPlacement(pageID, editOrder))
		if err != nil {
			return err
		}
	} else {
		data, err := readData(dataFile)
		if err != nil {
			return err
		}
		editor, err := orch.Load(content.Section{
			SectionType: typeID,
			PageID:      pageID,
			OrderIndex:  editOrder,
			Data:        data,
		})
		if err != nil {
			return err
		}
		if !editor.Supported() {
			return fmt.Errorf("section type %q has no contract", typeID)
		}
		session = editor.Session
	}
	defer session.Close()

	editor, err := newEditor(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := editor.Edit(commandContext(cmd), session); err != nil {
		return err
	}

	if pageID == uuid.Nil {
		return writeJSON(cmd, session.Document())
	}
	section, err := orch.Submit(commandContext(cmd), session)
	if err != nil {
		return err
	}
	return writeJSON(cmd, section)
}
