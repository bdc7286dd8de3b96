package assist

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

const fixTemplate = "Fix the following code:\n\n%s\n\nProblem: %s\n\n" +
	"Provide only the complete fixed code without additional explanations."

// Limits applied by AnalysisPrompt.
const (
	MaxAnalysisFiles = 10
	MaxExcerptRunes  = 1000
)

// SourceExtensions selects which files have their content quoted in an analysis prompt.
var SourceExtensions = []string{
	".c", ".cc", ".cpp", ".h", ".hpp", ".qml",
	".go", ".py", ".js", ".ts", ".java", ".rs",
}

// FixPrompt formats the fix request for code with the given problem description.
func FixPrompt(code, problem string) string {
	return fmt.Sprintf(fixTemplate, code, problem)
}

// AnalysisPrompt lists every path in files and quotes the first
// MaxExcerptRunes runes of up to MaxAnalysisFiles source files, in path order.
func AnalysisPrompt(files map[string]string) string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString("Analyze this project and provide:\n")
	b.WriteString("1. Architecture suggestions\n")
	b.WriteString("2. Performance improvements\n")
	b.WriteString("3. Modern practices to apply\n")
	b.WriteString("4. Potential bugs\n\n")
	b.WriteString("Answer with markdown headings for each topic and \"- key: value\" bullets under them.\n\n")
	b.WriteString("Project structure:\n")
	for _, p := range paths {
		b.WriteString("- ")
		b.WriteString(p)
		b.WriteByte('\n')
	}

	b.WriteString("\nKey files content:\n")
	quoted := 0
	for _, p := range paths {
		if quoted == MaxAnalysisFiles {
			break
		}
		if !IsSourceFile(p) {
			continue
		}
		fmt.Fprintf(&b, "\n==== %s ====\n%s\n", p, truncateRunes(files[p], MaxExcerptRunes))
		quoted++
	}
	return b.String()
}

// IsSourceFile reports whether p has one of SourceExtensions.
func IsSourceFile(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
