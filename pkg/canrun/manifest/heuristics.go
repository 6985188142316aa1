package manifest

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// DependencyFiles lists the dependency manifests understood by the
// inference heuristics, probed at the project root.
var DependencyFiles = []string{"requirements.txt", "package.json", "go.mod"}

// mlFrameworks are core ML frameworks whose presence implies significant
// memory and accelerator demands. Matched by substring, so torchvision
// and tensorflow-gpu count too.
var mlFrameworks = []string{"tensorflow", "torch", "keras"}

// largeModelPackages are libraries that typically pull multi-gigabyte
// pretrained models.
var largeModelPackages = []string{"transformers", "diffusers"}

// Floors applied when ML frameworks are present but the manifest does
// not constrain the kind.
const (
	mlRAMRequired    = 4 * types.GiB
	mlRAMRecommended = 8 * types.GiB
	mlGPURequired    = 4 * types.GiB
	mlGPURecommended = 8 * types.GiB
)

// Dependencies lists the packages declared by the project's dependency
// files, keyed by ecosystem ("python", "node", "go"). Files that are
// absent or unreadable contribute nothing.
func Dependencies(root string) map[string][]string {
	deps := make(map[string][]string)
	if pkgs := pythonRequirements(filepath.Join(root, "requirements.txt")); len(pkgs) > 0 {
		deps["python"] = pkgs
	}
	if pkgs := nodeDependencies(filepath.Join(root, "package.json")); len(pkgs) > 0 {
		deps["node"] = pkgs
	}
	if pkgs := goRequires(filepath.Join(root, "go.mod")); len(pkgs) > 0 {
		deps["go"] = pkgs
	}
	return deps
}

// Indicators summarizes the heavy dependencies discovered in a project.
type Indicators struct {
	// Frameworks lists the core ML frameworks found.
	Frameworks []string `json:"frameworks,omitempty"`
	// LargeModels lists libraries that imply large pretrained models.
	LargeModels []string `json:"large_models,omitempty"`
}

// Heavy reports whether any heavy dependency was found.
func (i Indicators) Heavy() bool {
	return len(i.Frameworks) > 0 || len(i.LargeModels) > 0
}

// DetectIndicators scans the project's dependency files for heavy
// packages.
func DetectIndicators(root string) Indicators {
	return indicatorsFrom(Dependencies(root))
}

func indicatorsFrom(deps map[string][]string) Indicators {
	var ind Indicators
	seenFW := make(map[string]bool)
	seenLM := make(map[string]bool)

	for _, pkgs := range deps {
		for _, pkg := range pkgs {
			for _, fw := range mlFrameworks {
				if strings.Contains(pkg, fw) && !seenFW[fw] {
					seenFW[fw] = true
					ind.Frameworks = append(ind.Frameworks, fw)
				}
			}
			for _, lm := range largeModelPackages {
				if strings.Contains(pkg, lm) && !seenLM[lm] {
					seenLM[lm] = true
					ind.LargeModels = append(ind.LargeModels, lm)
				}
			}
		}
	}

	sort.Strings(ind.Frameworks)
	sort.Strings(ind.LargeModels)
	return ind
}

// pythonRequirements extracts package names from a pip requirements
// file. Comments, blank lines and pip flags are skipped; version pins,
// extras and environment markers are stripped.
func pythonRequirements(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var pkgs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		name := line
		for _, sep := range []string{"==", ">=", "<=", "~=", "!=", "===", ">", "<", "=", "[", ";", " ", "\t"} {
			if i := strings.Index(name, sep); i >= 0 {
				name = name[:i]
			}
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			pkgs = append(pkgs, name)
		}
	}
	return pkgs
}

// nodeDependencies extracts package names from a package.json, combining
// dependencies and devDependencies.
func nodeDependencies(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var doc struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}

	var pkgs []string
	for name := range doc.Dependencies {
		pkgs = append(pkgs, strings.ToLower(name))
	}
	for name := range doc.DevDependencies {
		pkgs = append(pkgs, strings.ToLower(name))
	}
	sort.Strings(pkgs)
	return pkgs
}

// goRequires extracts module paths from a go.mod require section.
func goRequires(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var pkgs []string
	inBlock := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "require ("):
			inBlock = true
		case inBlock && line == ")":
			inBlock = false
		case inBlock:
			fields := strings.Fields(line)
			if len(fields) >= 2 && !strings.HasPrefix(fields[0], "//") {
				pkgs = append(pkgs, fields[0])
			}
		case strings.HasPrefix(line, "require "):
			fields := strings.Fields(strings.TrimPrefix(line, "require "))
			if len(fields) >= 2 {
				pkgs = append(pkgs, fields[0])
			}
		}
	}
	return pkgs
}
