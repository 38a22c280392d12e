package docs

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	consoleCheck = "console check"
	bashCheck    = "bash check"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md must load, and every topic file must be
	// listed in readme.md.
	topics, err := Topics()
	if err != nil {
		t.Fatalf("Topics() error = %v", err)
	}
	if len(topics) == 0 {
		t.Fatal("Topics() found no topic in readme.md")
	}

	listed := make(map[string]bool)
	for _, topic := range topics {
		listed[topic.Name] = true
		t.Run("load_"+topic.Name, func(t *testing.T) {
			content, err := GetTopic(topic.Name)
			if err != nil {
				t.Fatalf("failed to get topic %q: %v", topic.Name, err)
			}
			if title := firstHeading(t, content); title == "" {
				t.Errorf("topic %q does not start with a level 1 heading", topic.Name)
			}
			if topic.Description == "" {
				t.Errorf("topic %q has no description in readme.md", topic.Name)
			}
		})
	}

	names, err := files()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if !listed[name] {
			t.Errorf("topic %q is not listed in docs/readme.md", name)
		}
	}

	if _, err := GetTopic("no-such-topic"); err == nil {
		t.Error("GetTopic(no-such-topic) error = nil")
	}
	all, err := GetTopic("*")
	if err != nil {
		t.Fatalf("GetTopic(*) error = %v", err)
	}
	if !strings.Contains(all, "# Holdings") || !strings.Contains(all, "# Sync") {
		t.Errorf("GetTopic(*) does not contain every topic")
	}
}

// firstHeading returns the text of the document's first node if it is a
// level 1 heading, or "".
func firstHeading(t *testing.T, content string) string {
	t.Helper()
	source := []byte(content)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	h, ok := root.FirstChild().(*ast.Heading)
	if !ok || h.Level != 1 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < h.Lines().Len(); i++ {
		line := h.Lines().At(i)
		b.Write(line.Value(source))
	}
	return b.String()
}

func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	for _, file := range files {
		t.Run(file, func(t *testing.T) {
			runBlocks(t, file)
		})
	}
}

// HELPER

// Block represents a fenced code block in the markdown file.
type Block struct {
	Type    string
	Content string
	File    string
	Line    int
}

// buildFolio builds the `folio` command-line executable and returns the absolute
// path to the compiled binary. It uses a temporary directory for the build
// output.
func buildFolio(t *testing.T, tmp string) string {
	t.Helper()

	output := filepath.Join(tmp, "folio")

	buildCmd := exec.Command("go", "build", "-o", output, "../folio/")
	if out, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build folio command: %v\n%s", err, out)
	}

	return output
}

// parseMarkdown parses a markdown file and returns a list of Blocks.
func parseMarkdown(t *testing.T, file string) []*Block {
	t.Helper()

	content, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}

	mdParser := goldmark.DefaultParser()
	root := mdParser.Parse(text.NewReader(content))

	// Read all blocks.

	var blocks []*Block

	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		if fcb, ok := n.(*ast.FencedCodeBlock); ok {
			if fcb.Info == nil {
				return ast.WalkContinue, nil
			}
			lang := string(fcb.Info.Segment.Value(content))

			// lang := string(fcb.Language(content))
			var blockContent strings.Builder
			for i := 0; i < fcb.Lines().Len(); i++ {
				line := fcb.Lines().At(i)
				blockContent.WriteString(string(line.Value(content)))
			}

			// Get the line number of the block
			startOffset := fcb.Info.Segment.Start

			switch lang {
			case bashCheck, bashSetup, bashRun, consoleCheck:
				blocks = append(blocks, &Block{
					Type:    lang,
					Content: blockContent.String(),
					File:    file,
					Line:    lineNumber(content, startOffset),
				})
			}
		}
		return ast.WalkContinue, nil
	})

	return blocks
}

// lineNumber computes the lineNumber for a given offset AST offset.
// the markdown parser we use does not support that feature so we
// have to implement it.
func lineNumber(source []byte, offset int) (lineNumber int) {
	newline := []byte{'\n'}
	// Create a slice of the source from the beginning to the node's offset.
	sourceToNode := source[:offset]

	// Count the number of newlines in that slice.
	lineCount := bytes.Count(sourceToNode, newline)

	// The line number is the number of newlines + 1.
	return lineCount + 1
}

// blockRunner defines all that is need to run a test for a block
type blockRunner struct {
	env            []string // env use to execute commands
	previousOutput string
	tmpFolder      string
}

func (r *blockRunner) runBlock(t *testing.T, block *Block) {
	t.Helper()

	// Check don't need execution.
	if block.Type == consoleCheck {
		want := strings.TrimSpace(block.Content)
		got := strings.TrimSpace(r.previousOutput)
		// replace tabs with spaces for consistent comparison
		got = strings.ReplaceAll(got, "\t", "        ")
		if want != got {
			// Print out the diffs in full text first, and in escaped text later.
			t.Errorf("%s:%d: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q\n", block.File, block.Line, got, want, got, want)
		}
		return
	}
	// Create a new execution folder on a new setup.
	if block.Type == bashSetup {
		r.tmpFolder = t.TempDir() // new scenario temp folder
	}

	// Execute bash.
	cmd := exec.Command("bash", "-c", "set -e; "+block.Content)
	cmd.Dir = r.tmpFolder
	cmd.Env = r.env
	output, err := cmd.CombinedOutput()

	// Record last run output.
	if block.Type == bashRun {
		r.previousOutput = string(output)
	}

	// Handling bash errors.
	if err != nil {
		switch block.Type {
		case bashSetup, bashRun:
			t.Fatalf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
		case bashCheck:
			t.Errorf("%s:%d: %s failed: %v with output:\n%s\n", block.File, block.Line, block.Type, err, output)
			return
		default:
			t.Fatalf("%s:%d: unknown block type: %s", block.File, block.Line, block.Type)
		}
	}
}

// runBlocks executes a series of scenarios extracted from a
// markdown file.
func runBlocks(t *testing.T, file string) {
	t.Helper()

	blocks := parseMarkdown(t, file)
	if len(blocks) == 0 {
		return
	}
	if testing.Short() {
		t.Skip("documentation scenarios build the binary, skipped in short mode")
	}

	globalTmp := t.TempDir()
	folioDir := filepath.Dir(buildFolio(t, globalTmp))

	// scenarios never reach the network, nor the user's settings.
	newPath := fmt.Sprintf("PATH=%s%c%s", folioDir, os.PathListSeparator, os.Getenv("PATH"))
	baseEnv := append(os.Environ(), newPath,
		"FOLIO_STORE=.folio", "FOLIO_POSTGRES_DSN=", "FOLIO_CURRENCY=usd",
		"COINGECKO_BASE_URL=http://127.0.0.1:1", "FOLIO_CACHE_TTL=0s")

	r := blockRunner{
		env:       baseEnv,
		tmpFolder: t.TempDir(),
	}
	for _, block := range blocks {
		r.runBlock(t, block)
	}
}
