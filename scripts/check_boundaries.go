package main

import (
	"flag"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const moduleRoot = "mintworks"

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerPolicy lists what a layer may import besides the standard library.
type layerPolicy struct {
	local      []string
	thirdParty []string
}

// policies is keyed by the directory directly under contexts/<area>/<service>.
// Layers missing from the map are only held to the cross-module rule.
func policies(modulePrefix string) map[string]layerPolicy {
	return map[string]layerPolicy{
		"domain": {
			local:      []string{modulePrefix + "/domain"},
			thirdParty: []string{"github.com/shopspring/decimal"},
		},
		"ports": {
			local: []string{modulePrefix + "/domain", moduleRoot + "/contracts"},
		},
		"application": {
			local: []string{
				modulePrefix + "/application",
				modulePrefix + "/domain",
				modulePrefix + "/ports",
				moduleRoot + "/contracts",
			},
			thirdParty: []string{"github.com/google/uuid", "go.opentelemetry.io/otel"},
		},
		"transport": {},
	}
}

func main() {
	root := flag.String("root", "contexts", "contexts directory to scan")
	flag.Parse()

	violations := collectViolations(*root)
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) < 3 {
			return nil
		}

		layer := ""
		if len(parts) > 3 {
			layer = parts[2]
		}
		modulePrefix := fmt.Sprintf("%s/contexts/%s/%s", moduleRoot, parts[0], parts[1])
		violations = append(violations, validateFile(path, filepath.ToSlash(path), layer, modulePrefix)...)
		return nil
	})

	return violations
}

func validateFile(path string, normalizedPath string, layer string, modulePrefix string) []violation {
	var violations []violation

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return append(violations, violation{
			File: normalizedPath,
			Line: 1,
			Rule: "file must parse",
		})
	}

	policy, governed := policies(modulePrefix)[layer]
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line

		if hasPrefix(importPath, moduleRoot+"/contexts") && !hasPrefix(importPath, modulePrefix) {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   line,
				Import: importPath,
				Rule:   "cross-module imports are forbidden",
			})
		}
		if !governed || isStdlib(importPath) {
			continue
		}
		if hasPrefix(importPath, moduleRoot+"/internal") {
			violations = append(violations, violation{
				File:   normalizedPath,
				Line:   line,
				Import: importPath,
				Rule:   layer + " must not import runtime infrastructure",
			})
			continue
		}
		if isAllowed(importPath, policy.local) || isAllowed(importPath, policy.thirdParty) {
			continue
		}
		violations = append(violations, violation{
			File:   normalizedPath,
			Line:   line,
			Import: importPath,
			Rule:   layer + " import is outside explicit allowlist",
		})
	}

	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if hasPrefix(importPath, moduleRoot) {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
