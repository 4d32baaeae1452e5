package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/orchestrator"
)

var (
	dataFile     string
	rendererName string
	themeName    string
	themeVariant string
)

// errInvalidPayload is returned by normalize when the repaired document still
// violates its contract.
var errInvalidPayload = errors.New("payload does not satisfy the contract")

var renderCmd = &cobra.Command{
	Use:   "render [section-type]",
	Short: "Render the editing form of a section",
	Long: `Renders the form for a section type. Without --data the form is seeded
with the contract defaults; otherwise the document is normalized first and
the repairs are reported on stderr.

Example:
  sectionform render hero --data hero.json --renderer html > hero.html`,
	Args: cobra.ExactArgs(1),
	RunE: renderSection,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [section-type]",
	Short: "Repair a document against its contract and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  normalizeSection,
}

func init() {
	renderCmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML document to load")
	renderCmd.Flags().StringVarP(&rendererName, "renderer", "r", "", "renderer name (defaults to html)")
	renderCmd.Flags().StringVar(&themeName, "theme", "", "theme name")
	renderCmd.Flags().StringVar(&themeVariant, "variant", "", "theme variant")

	normalizeCmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON or YAML document to normalize")
	_ = normalizeCmd.MarkFlagRequired("data")
}

func renderSection(cmd *cobra.Command, args []string) error {
	runtime, err := runtimeOrErr()
	if err != nil {
		return err
	}
	orch := runtime.Orchestrator
	typeID := args[0]

	req := orchestrator.Request{
		Renderer:     rendererName,
		ThemeName:    themeName,
		ThemeVariant: themeVariant,
	}
	if strings.TrimSpace(dataFile) == "" {
		session, err := orch.NewSession(typeID)
		if err != nil {
			return err
		}
		defer session.Close()
		req.Form = session.Form()
	} else {
		data, err := readData(dataFile)
		if err != nil {
			return err
		}
		editor, err := orch.Load(content.Section{SectionType: typeID, Data: data})
		if err != nil {
			return err
		}
		if editor.Session != nil {
			defer editor.Session.Close()
			for _, d := range editor.Session.LoadDiagnostics() {
				fmt.Fprintf(cmd.ErrOrStderr(), "repaired %s: %s\n", d.Path, d.Message)
			}
		}
		req.Form = editor.Form()
	}

	out, err := orch.Render(commandContext(cmd), req)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func normalizeSection(cmd *cobra.Command, args []string) error {
	runtime, err := runtimeOrErr()
	if err != nil {
		return err
	}
	raw, err := readData(dataFile)
	if err != nil {
		return err
	}
	preview, err := runtime.Orchestrator.Preview(args[0], raw)
	if err != nil {
		return err
	}
	if err := writeJSON(cmd, preview); err != nil {
		return err
	}
	if !preview.Valid {
		return errInvalidPayload
	}
	return nil
}

// readData decodes a JSON or YAML document. YAML is routed through JSON so
// numbers come back as float64, like every other document source.
func readData(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if raw, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return data, nil
}
