package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-formruntime/pkg/codegen"
	"github.com/goliatone/go-formruntime/pkg/model"
	"github.com/goliatone/go-formruntime/pkg/persist"
)

func main() {
	command := flag.String("command", "inspect", "inspect, migrate, verify, or generate")
	source := flag.String("source", "", "persisted form file (.json or .yaml)")
	output := flag.String("output", "", "output file (stdout if empty)")
	format := flag.String("format", "json", "output encoding for migrate: json or yaml")
	flag.Parse()

	if strings.TrimSpace(*source) == "" {
		log.Fatal("missing -source")
	}

	var (
		out []byte
		err error
	)
	switch *command {
	case "inspect":
		out, err = inspect(*source)
	case "migrate":
		out, err = migrate(*source, *format)
	case "verify":
		out, err = verify(*source)
	case "generate":
		out, err = generate(*source)
	default:
		log.Fatalf("unknown command %q", *command)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", *command, err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
	} else {
		fmt.Println(strings.TrimRight(string(out), "\n"))
	}
}

// inspect prints a short structural summary of a form file.
func inspect(path string) ([]byte, error) {
	form, err := persist.LoadFile(path)
	if err != nil {
		return nil, err
	}

	tree, err := persist.Import(form, persist.ImportOptions{})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "form: %s\n", form.Metadata.FormName)
	fmt.Fprintf(&sb, "id: %s\n", form.ID)
	fmt.Fprintf(&sb, "version: %s\n", form.Version)
	fmt.Fprintf(&sb, "components: %d\n", countNodes(tree))
	if len(form.Languages) > 0 {
		names := make([]string, 0, len(form.Languages))
		for _, lang := range form.Languages {
			names = append(names, lang.Code)
		}
		fmt.Fprintf(&sb, "languages: %s\n", strings.Join(names, ", "))
	}
	return []byte(sb.String()), nil
}

// migrate upgrades a form file to the current schema version.
func migrate(path, format string) ([]byte, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := persist.Migrate(payload)
	if !result.Success {
		return nil, fmt.Errorf("migration failed: %s", strings.Join(result.Errors, "; "))
	}

	switch format {
	case "yaml", "yml":
		return persist.EncodeYAML(result.Data)
	default:
		return persist.EncodeJSON(result.Data)
	}
}

// verify round-trips a form through import/export and reports drift.
func verify(path string) ([]byte, error) {
	form, err := persist.LoadFile(path)
	if err != nil {
		return nil, err
	}

	tree, err := persist.Import(form, persist.ImportOptions{})
	if err != nil {
		return nil, err
	}
	again, err := persist.Export(tree, persist.ExportOptions{
		ID:              form.ID,
		Metadata:        form.Metadata,
		DefaultLanguage: form.DefaultLanguage,
		Languages:       form.Languages,
		Localization:    form.Localization,
		Actions:         form.Actions,
		FormValidator:   form.FormValidator,
	})
	if err != nil {
		return nil, err
	}

	result := persist.Verify(form, again)
	var sb strings.Builder
	if result.Success {
		sb.WriteString("round trip: ok\n")
	} else {
		sb.WriteString("round trip: FAILED\n")
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(&sb, "error: %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(&sb, "warning: %s\n", msg)
	}
	if !result.Success {
		return []byte(sb.String()), fmt.Errorf("form does not round trip")
	}
	return []byte(sb.String()), nil
}

// generate renders the form as static HTML markup.
func generate(path string) ([]byte, error) {
	form, err := persist.LoadFile(path)
	if err != nil {
		return nil, err
	}

	gen, err := codegen.New()
	if err != nil {
		return nil, err
	}
	html, err := gen.HTML(form)
	if err != nil {
		return nil, err
	}
	return []byte(html), nil
}

func countNodes(root *model.ComponentNode) int {
	count := 0
	model.Walk(root, func(*model.ComponentNode, *model.ComponentNode) bool {
		count++
		return true
	})
	return count
}
