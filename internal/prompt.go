package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// PromptKind selects one of the three templates a task carries
type PromptKind string

const (
	PromptSystem PromptKind = "system"
	PromptWhole  PromptKind = "whole"
	PromptChunk  PromptKind = "chunk"
)

// PromptKinds lists the template kinds of every task
var PromptKinds = []PromptKind{PromptSystem, PromptWhole, PromptChunk}

// PromptData for template injection
type PromptData struct {
	Title       string
	Uploader    string
	Description string
	Transcript  string
	Index       int
	Total       int
}

// promptKey is the config key and default file stem for a task template, e.g. "summarize.whole"
func promptKey(task Task, kind PromptKind) string {
	return task.String() + "." + string(kind)
}

// promptFileName is the file name of a default template, e.g. "summarize_whole.tmpl"
func promptFileName(task Task, kind PromptKind) string {
	return task.String() + "_" + string(kind) + ".tmpl"
}

// PromptManager resolves and renders task prompt templates.
// Lookup order: explicit override (string or file path), the template in the
// config directory, then the embedded default.
type PromptManager struct {
	configDir string
	overrides map[string]string
}

// NewPromptManager creates a new prompt manager; overrides are keyed like "summarize.whole"
func NewPromptManager(configDir string, overrides map[string]string) *PromptManager {
	pm := &PromptManager{
		configDir: configDir,
		overrides: make(map[string]string, len(overrides)),
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) != "" {
			pm.overrides[k] = v
		}
	}
	return pm
}

// WithOverride returns a copy of the manager with one template replaced
func (pm *PromptManager) WithOverride(task Task, kind PromptKind, value string) *PromptManager {
	overrides := make(map[string]string, len(pm.overrides)+1)
	for k, v := range pm.overrides {
		overrides[k] = v
	}
	overrides[promptKey(task, kind)] = value
	return NewPromptManager(pm.configDir, overrides)
}

// Render builds the prompt text for a task and template kind
func (pm *PromptManager) Render(task Task, kind PromptKind, data PromptData) (string, error) {
	tmplContent, err := pm.templateContent(task, kind)
	if err != nil {
		return "", err
	}
	return buildPromptFromTemplate(promptKey(task, kind), tmplContent, data)
}

// templateContent finds the raw template text for a task and kind
func (pm *PromptManager) templateContent(task Task, kind PromptKind) (string, error) {
	if setting, ok := pm.overrides[promptKey(task, kind)]; ok {
		if IsLikelyFilePath(setting) && FileExists(setting) {
			content, err := os.ReadFile(setting)
			if err != nil {
				return "", fmt.Errorf("reading prompt template %s: %w", setting, err)
			}
			return string(content), nil
		}
		return setting, nil
	}

	if pm.configDir != "" {
		userFile := filepath.Join(pm.configDir, "prompts", promptFileName(task, kind))
		if FileExists(userFile) {
			content, err := os.ReadFile(userFile)
			if err != nil {
				return "", fmt.Errorf("reading prompt template %s: %w", userFile, err)
			}
			return string(content), nil
		}
	}

	content, err := defaultFS.ReadFile("prompts/" + promptFileName(task, kind))
	if err != nil {
		return "", fmt.Errorf("no prompt template for %s: %w", promptKey(task, kind), err)
	}
	return string(content), nil
}

// buildPromptFromTemplate parses and executes a prompt template
func buildPromptFromTemplate(name, templateContent string, data PromptData) (string, error) {
	tmpl, err := template.New(name).Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// Long strings are prompts, not paths
	if len(s) > 200 {
		return false
	}

	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
