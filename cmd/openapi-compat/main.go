// Command openapi-compat fails when the API documented in this build drops
// anything a saved swagger snapshot promised to clients.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"puppytalk/docs"
)

func main() {
	basePath := flag.String("base", "", "saved swagger snapshot (json or yaml)")
	revisionPath := flag.String("revision", "", "swagger file to check; defaults to the docs compiled into this binary")
	writePath := flag.String("write", "", "write the compiled docs to this path and exit")
	flag.Parse()

	if *writePath != "" {
		if err := os.WriteFile(*writePath, []byte(docs.SwaggerInfo.ReadDoc()), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write snapshot: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *writePath)
		return
	}

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>] | -write <path>")
		os.Exit(2)
	}

	base, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		os.Exit(1)
	}

	var revision apiDoc
	if *revisionPath != "" {
		revision, err = loadFile(*revisionPath)
	} else {
		revision, err = parseDoc([]byte(docs.SwaggerInfo.ReadDoc()))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		os.Exit(1)
	}

	issues := compare(base, revision)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Println("openapi compatibility check passed")
}
