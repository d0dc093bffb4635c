package prompts

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/protocol"
)

// Template is a prompt plus the text its arguments are substituted into.
// Placeholders are written {{name}}.
type Template struct {
	protocol.Prompt
	Text string `json:"text"`
}

// RefereeReport is the built-in prompt asking a client to analyse the referee stats
var RefereeReport = Template{
	Prompt: protocol.Prompt{
		Name:        "referee_report",
		Description: "Analyse how a team fares under each referee",
		Arguments: []protocol.PromptArgument{
			{Name: "team", Description: "Team to analyse, defaults to the configured team"},
			{Name: "seasons", Description: "Comma separated seasons, defaults to all"},
		},
	},
	Text: `Call the referee_stats tool for team "{{team}}" and seasons "{{seasons}}".
Using the result, summarise which referees {{team}} does best and worst under.
Quote win rates and goal differentials, and flag any referee with fewer than
five matches as too small a sample to draw conclusions from.`,
}

// PromptRegistry manages the prompts advertised over MCP
type PromptRegistry struct {
	mu       sync.RWMutex
	baseDir  string
	defaults map[string]string
	prompts  map[string]Template
}

// NewPromptRegistry creates a registry holding the built-in prompts.
// defaults fill arguments the client leaves empty.
func NewPromptRegistry(defaults map[string]string) *PromptRegistry {
	pr := &PromptRegistry{
		defaults: defaults,
		prompts:  map[string]Template{},
	}
	pr.prompts[RefereeReport.Name] = RefereeReport
	return pr
}

// GetPromptPath returns the file path for a prompt name
func (pr *PromptRegistry) GetPromptPath(name string) (string, error) {
	// Validate the name to prevent directory traversal
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid prompt name: %q", name)
	}
	pr.mu.RLock()
	dir := pr.baseDir
	pr.mu.RUnlock()
	if dir == "" {
		return "", fmt.Errorf("prompt registry has no directory")
	}
	return filepath.Join(dir, name+".json"), nil
}

// LoadDir adds every *.json template in dir, replacing built-ins of the same name.
// Unreadable files are logged and skipped.
func (pr *PromptRegistry) LoadDir(dir string) error {
	pr.mu.Lock()
	pr.baseDir = dir
	pr.mu.Unlock()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Failed to read prompt", path, err)
			return nil
		}
		var t Template
		if err := json.Unmarshal(data, &t); err != nil {
			logger.Warn("Failed to parse prompt", path, err)
			return nil
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(d.Name(), ".json")
		}
		pr.mu.Lock()
		pr.prompts[t.Name] = t
		pr.mu.Unlock()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load prompts from %s: %w", dir, err)
	}
	return nil
}

// ListPrompts returns every prompt sorted by name
func (pr *PromptRegistry) ListPrompts() []protocol.Prompt {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	ret := make([]protocol.Prompt, 0, len(pr.prompts))
	for _, t := range pr.prompts {
		ret = append(ret, t.Prompt)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Name < ret[j].Name })
	return ret
}

// GetPrompt renders the named prompt with args
func (pr *PromptRegistry) GetPrompt(name string, args map[string]string) (*protocol.PromptResult, error) {
	pr.mu.RLock()
	t, ok := pr.prompts[name]
	pr.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", name)
	}
	text, err := pr.render(t, args)
	if err != nil {
		return nil, err
	}
	return &protocol.PromptResult{
		Description: t.Description,
		Messages: []protocol.PromptMessage{
			{Role: "user", Content: protocol.NewTextContent(text)},
		},
	}, nil
}

func (pr *PromptRegistry) render(t Template, args map[string]string) (string, error) {
	var pairs []string
	for _, a := range t.Arguments {
		v := strings.TrimSpace(args[a.Name])
		if v == "" {
			v = pr.defaults[a.Name]
		}
		if v == "" && a.Required {
			return "", fmt.Errorf("prompt %s requires argument %s", t.Name, a.Name)
		}
		if v == "" {
			v = "all"
		}
		pairs = append(pairs, "{{"+a.Name+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(t.Text), nil
}

// SavePrompt writes t into the registry directory and registers it
func (pr *PromptRegistry) SavePrompt(t Template) error {
	path, err := pr.GetPromptPath(t.Name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create prompt directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompt file: %w", err)
	}
	pr.mu.Lock()
	pr.prompts[t.Name] = t
	pr.mu.Unlock()
	return nil
}
