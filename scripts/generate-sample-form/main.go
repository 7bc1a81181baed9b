// Command generate-sample-form writes the demo profile form to disk as a
// persisted JSON document, the fixture the CLI and docs reference.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/goliatone/go-formruntime/pkg/persist"
	"github.com/goliatone/go-formruntime/pkg/testsupport"
)

func main() {
	output := flag.String("output", "sample-form.json", "output file path")
	asYAML := flag.Bool("yaml", false, "encode as YAML instead of JSON")
	flag.Parse()

	form, err := testsupport.BuildDemoForm()
	if err != nil {
		log.Fatalf("build form: %v", err)
	}

	var payload []byte
	if *asYAML {
		payload, err = persist.EncodeYAML(form)
	} else {
		payload, err = persist.EncodeJSON(form)
	}
	if err != nil {
		log.Fatalf("encode form: %v", err)
	}

	if err := os.WriteFile(*output, payload, 0o644); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
	log.Printf("wrote %s", *output)
}
