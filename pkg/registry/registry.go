// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"market-entry-workers/internal/common/validation"
)

var ErrActivityNotFound = errors.New("activity not found")

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON, creating the directory if needed.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the activity bound to taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, error) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrActivityNotFound, taskType)
}

// Add appends a new activity. IDs and task types must stay unique.
func (r *ActivityRegistry) Add(activity Activity) error {
	for _, existing := range r.Activities {
		if existing.ID == activity.ID {
			return fmt.Errorf("activity with ID %s already exists", activity.ID)
		}
		if existing.TaskType == activity.TaskType {
			return fmt.Errorf("task type %s already registered by %s", activity.TaskType, existing.ID)
		}
	}

	r.Activities = append(r.Activities, activity)
	r.touch()
	return nil
}

// Update sets a single scalar field of the activity with the given ID.
func (r *ActivityRegistry) Update(id, field, value string) error {
	for i := range r.Activities {
		if r.Activities[i].ID != id {
			continue
		}
		a := &r.Activities[i]
		switch field {
		case "status":
			a.ImplementationStatus = value
		case "version":
			a.Version = value
		case "displayName":
			a.DisplayName = value
		case "description":
			a.Description = value
		case "category":
			a.Category = value
		case "timeout":
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("invalid timeout value: %w", err)
			}
			a.Timeout = value
		case "retries":
			retries, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retries value: %w", err)
			}
			a.Retries = retries
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		r.touch()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
}

func (r *ActivityRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// Validate checks required fields, uniqueness of IDs and task types, and
// that every input and output schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q: %w", activity.ID, activity.Timeout, err)
			}
		}
		if _, err := activity.CompileInputSchema(); err != nil {
			return fmt.Errorf("activity %s: %w", activity.ID, err)
		}
		if _, err := activity.CompileOutputSchema(); err != nil {
			return fmt.Errorf("activity %s: %w", activity.ID, err)
		}
	}
	return nil
}

// CompileInputSchema compiles the activity's input schema. An empty schema
// yields nil, which callers treat as "accept anything".
func (a *Activity) CompileInputSchema() (*validation.Schema, error) {
	return compileSchema(a.InputSchema, "input")
}

// CompileOutputSchema compiles the schema of the variables the worker
// completes the job with.
func (a *Activity) CompileOutputSchema() (*validation.Schema, error) {
	return compileSchema(a.OutputSchema, "output")
}

func compileSchema(raw map[string]interface{}, kind string) (*validation.Schema, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	schema, err := validation.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s schema: %w", kind, err)
	}
	return schema, nil
}

// InputValidator loads the registry at path and compiles the input schema
// of taskType.
func InputValidator(path, taskType string) (*validation.Schema, error) {
	activity, err := findActivity(path, taskType)
	if err != nil {
		return nil, err
	}
	return activity.CompileInputSchema()
}

// OutputValidator is InputValidator for the output contract.
func OutputValidator(path, taskType string) (*validation.Schema, error) {
	activity, err := findActivity(path, taskType)
	if err != nil {
		return nil, err
	}
	return activity.CompileOutputSchema()
}

func findActivity(path, taskType string) (*Activity, error) {
	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	return reg.Find(taskType)
}
