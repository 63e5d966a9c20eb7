// render_draft writes the print view of a resume draft to an HTML file so
// the export layout can be checked in a browser without Chrome automation.
//
// The input is a JSON object of form values, e.g.
// {"profile.fullName": "Jane Doe", "projects.len": "1", "projects.0.title": "P1"}.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"nextstep-cv/internal/form"
	"nextstep-cv/internal/usecase"
	"nextstep-cv/pkg/logger"
)

func main() {
	in := flag.String("in", "draft.json", "form values as a JSON object")
	out := flag.String("out", filepath.Join("data", "print", "resume.html"), "output HTML file")
	flag.Parse()

	b, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read draft: %v\n", err)
		os.Exit(2)
	}
	var m map[string]string
	if err := json.Unmarshal(b, &m); err != nil {
		fmt.Fprintf(os.Stderr, "unmarshal: %v\n", err)
		os.Exit(2)
	}
	values := url.Values{}
	for k, v := range m {
		values.Set(k, v)
	}
	f, err := form.ParseValues(values)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse draft: %v\n", err)
		os.Exit(2)
	}

	html, err := usecase.NewExporter(nil, logger.Nop()).HTML(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "execute tpl: %v\n", err)
		os.Exit(2)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "create dir: %v\n", err)
		os.Exit(2)
	}
	if err := os.WriteFile(*out, []byte(html), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write out: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("wrote %s\n", *out)
}
