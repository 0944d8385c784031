package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]bool{
	"get": true, "put": true, "post": true, "delete": true,
	"patch": true, "head": true, "options": true,
}

type parameter struct {
	Name     string `yaml:"name"`
	In       string `yaml:"in"`
	Required bool   `yaml:"required"`
}

type operation struct {
	Parameters []parameter           `yaml:"parameters"`
	Responses  map[string]yaml.Node `yaml:"responses"`
}

// apiDoc keeps only what compatibility depends on: path, method, response
// codes and parameter requirements.
type apiDoc struct {
	Paths map[string]map[string]operation
}

func loadFile(path string) (apiDoc, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apiDoc{}, err
	}
	return parseDoc(raw)
}

// parseDoc reads a swagger document. yaml.v3 also reads the JSON swag emits.
// Path-item keys that are not HTTP methods are skipped.
func parseDoc(raw []byte) (apiDoc, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return apiDoc{}, err
	}
	if doc.Paths == nil {
		return apiDoc{}, errors.New("missing top-level paths field")
	}

	out := apiDoc{Paths: make(map[string]map[string]operation, len(doc.Paths))}
	for path, item := range doc.Paths {
		ops := make(map[string]operation)
		for key, node := range item {
			method := strings.ToLower(strings.TrimSpace(key))
			if !supportedMethods[method] {
				continue
			}
			var op operation
			if err := node.Decode(&op); err != nil {
				return apiDoc{}, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			ops[method] = op
		}
		if len(ops) > 0 {
			out.Paths[path] = ops
		}
	}
	return out, nil
}

func required(op operation) map[string]bool {
	out := make(map[string]bool)
	for _, p := range op.Parameters {
		if p.Required {
			out[p.In+":"+p.Name] = true
		}
	}
	return out
}

// compare lists every way revision breaks a client written against base.
func compare(base, revision apiDoc) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			name := strings.ToUpper(method) + " " + path
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, "removed operation: "+name)
				continue
			}

			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", name, code))
				}
			}

			before := required(baseOp)
			for param := range required(revOp) {
				if !before[param] {
					issues = append(issues, fmt.Sprintf("new required parameter: %s (%s)", name, param))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
