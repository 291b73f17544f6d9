package report

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FilePathsPlaceholder is replaced with the comma-joined corpus paths in task descriptions
const FilePathsPlaceholder = "{file_paths}"

// Agent describes the persona used as the system prompt of one stage
type Agent struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

// Task describes what one stage must produce
type Task struct {
	Description    string `yaml:"description"`
	ExpectedOutput string `yaml:"expected_output"`
}

// Crew pairs agents with tasks: index 0 is analysis, index 1 is synthesis
type Crew struct {
	Agents []Agent `yaml:"agents"`
	Tasks  []Task  `yaml:"tasks"`
}

// DefaultCrew returns the built-in analysis and synthesis definitions
func DefaultCrew() *Crew {
	return &Crew{
		Agents: []Agent{
			{
				Role: "YouTube Content Analyst",
				Goal: "Identify recurring topics, emerging trends and notable claims across recent videos " +
					"from the provided transcripts",
				Backstory: "You have spent years tracking creator ecosystems and can quickly tell a passing " +
					"mention from a topic a whole niche is converging on.",
			},
			{
				Role: "Trend Report Writer",
				Goal: "Turn raw trend analysis into a concise, well structured markdown report",
				Backstory: "You are an editor who writes briefings for busy readers. You keep every claim " +
					"tied to the videos it came from.",
			},
		},
		Tasks: []Task{
			{
				Description: "Analyze the transcripts and metadata in the following files: " + FilePathsPlaceholder +
					". Transcript lines look like \"(start-end): text\"; files without a transcript only " +
					"contain the video title and description. Extract the key topics, trends and " +
					"insights, noting which videos support each one.",
				ExpectedOutput: "A structured list of trends and topics with supporting evidence per video.",
			},
			{
				Description: "Using the analysis, write a trend report. Start with an executive summary, " +
					"then one section per trend with supporting points, and finish with notable outliers.",
				ExpectedOutput: "A markdown report with headings and bullet points.",
			},
		},
	}
}

// LoadCrew reads a crew definition from a YAML file
func LoadCrew(path string) (*Crew, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read crew file: %w", err)
	}

	var crew Crew
	if err := yaml.Unmarshal(data, &crew); err != nil {
		return nil, fmt.Errorf("failed to parse crew file: %w", err)
	}
	if err := crew.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crew file %s: %w", path, err)
	}
	return &crew, nil
}

// Validate checks that both stages are defined
func (c *Crew) Validate() error {
	if len(c.Agents) < 2 {
		return fmt.Errorf("expected 2 agents, got %d", len(c.Agents))
	}
	if len(c.Tasks) < 2 {
		return fmt.Errorf("expected 2 tasks, got %d", len(c.Tasks))
	}
	for i, task := range c.Tasks[:2] {
		if strings.TrimSpace(task.Description) == "" {
			return fmt.Errorf("task %d has no description", i)
		}
	}
	return nil
}

// systemPrompt renders an agent as a system message
func (a Agent) systemPrompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s.\n", strings.TrimSpace(a.Role))
	if a.Goal != "" {
		fmt.Fprintf(&sb, "Your goal: %s\n", strings.TrimSpace(a.Goal))
	}
	if a.Backstory != "" {
		sb.WriteString(strings.TrimSpace(a.Backstory))
		sb.WriteString("\n")
	}
	return sb.String()
}

// prompt renders a task with {file_paths} interpolated
func (t Task) prompt(filePaths string) string {
	var sb strings.Builder
	sb.WriteString(strings.ReplaceAll(strings.TrimSpace(t.Description), FilePathsPlaceholder, filePaths))
	if t.ExpectedOutput != "" {
		sb.WriteString("\n\nExpected output: ")
		sb.WriteString(strings.TrimSpace(t.ExpectedOutput))
	}
	return sb.String()
}
