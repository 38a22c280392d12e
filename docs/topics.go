// Package docs holds the user documentation, one markdown file per topic.
package docs

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
)

//go:embed *.md
var docs embed.FS

// Topic is a documentation topic as listed in the readme.
type Topic struct {
	Name        string
	Description string
}

// topicLine matches a topic of the readme list: "* name: description".
var topicLine = regexp.MustCompile(`^\*\s+([^:]+):\s*(.*)$`)

// Topics returns the topics listed in the readme, in order.
func Topics() ([]Topic, error) {
	content, err := docs.ReadFile("readme.md")
	if err != nil {
		return nil, err
	}
	var topics []Topic
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		if m := topicLine.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, Topic{Name: strings.TrimSpace(m[1]), Description: m[2]})
		}
	}
	return topics, scanner.Err()
}

// GetTopic returns the content of a documentation topic. "*" is every topic.
func GetTopic(topic string) (string, error) {
	if topic == "*" {
		topics, err := Topics()
		if err != nil {
			return "", err
		}
		names := make([]string, len(topics))
		for i, t := range topics {
			names[i] = t.Name
		}
		return GetTopics(names...)
	}

	content, err := docs.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", topic, err)
	}
	return string(content), nil
}

// GetTopics returns the content of multiple documentation topics concatenated together.
func GetTopics(topics ...string) (string, error) {
	var b bytes.Buffer
	for _, topic := range topics {
		content, err := GetTopic(topic)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// files returns the names of all embedded topic files, readme excluded.
func files() ([]string, error) {
	var names []string
	err := fs.WalkDir(docs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if base := strings.TrimSuffix(path.Base(p), ".md"); base != "readme" {
			names = append(names, base)
		}
		return nil
	})
	return names, err
}
