// Package edition reads and writes flow edition documents.
//
// An edition describes a flow as a list of step actions:
//
//	name: Kanban
//	default: Todo
//	steps:
//	  - action: keep
//	    name: Todo
//	  - action: edit
//	    name: Doing
//	    newName: In progress
//	    color: yellow
//	  - action: remove
//	    name: Blocked
//	  - action: add
//	    name: Done
//	    color: green
//
// Documents are checked against a CUE schema before decoding, then
// validated for consistency (unique resulting names, a default that
// survives the edition).
package edition

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/todo-manager/internal/entity"
)

// Action is what an edition does with one step.
type Action string

const (
	ActionAdd    Action = "add"
	ActionKeep   Action = "keep"
	ActionEdit   Action = "edit"
	ActionRemove Action = "remove"
)

// IsValid reports whether a is a known action.
func (a Action) IsValid() bool {
	switch a {
	case ActionAdd, ActionKeep, ActionEdit, ActionRemove:
		return true
	}
	return false
}

// FlowEdition is a flow edition document.
type FlowEdition struct {
	Name        string        `yaml:"name" json:"name"`
	Description *string       `yaml:"description,omitempty" json:"description,omitempty"`
	Default     string        `yaml:"default,omitempty" json:"default,omitempty"`
	Steps       []StepEdition `yaml:"steps" json:"steps"`
}

// StepEdition is one step action. Name is the step's current name, or the
// new step's name for ActionAdd. Nil fields are left unchanged by
// ActionEdit and empty for ActionAdd.
type StepEdition struct {
	Action      Action        `yaml:"action" json:"action"`
	Name        string        `yaml:"name" json:"name"`
	NewName     string        `yaml:"newName,omitempty" json:"newName,omitempty"`
	Description *string       `yaml:"description,omitempty" json:"description,omitempty"`
	Color       *entity.Color `yaml:"color,omitempty" json:"color,omitempty"`
}

// ResultName is the step's name once the edition is applied.
func (s StepEdition) ResultName() string {
	if s.Action == ActionEdit && s.NewName != "" {
		return s.NewName
	}
	return s.Name
}

// Survives reports whether the step is part of the resulting flow.
func (s StepEdition) Survives() bool {
	return s.Action != ActionRemove
}

// Parse decodes and validates an edition document.
func Parse(data []byte) (*FlowEdition, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, entity.NewInvalidEditionError("edition is not valid YAML", err)
	}
	if doc == nil {
		return nil, entity.NewInvalidEditionError("edition is empty", nil)
	}
	if err := checkSchema(doc); err != nil {
		return nil, err
	}

	var ed FlowEdition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ed); err != nil {
		return nil, entity.NewInvalidEditionError("decoding edition", err)
	}
	ed.normalize()

	if err := Check(&ed); err != nil {
		return nil, err
	}
	return &ed, nil
}

func (ed *FlowEdition) normalize() {
	ed.Name = entity.NormalizeText(ed.Name)
	ed.Default = entity.NormalizeText(ed.Default)
	if ed.Description != nil {
		d := entity.NormalizeText(*ed.Description)
		ed.Description = &d
	}
	for i := range ed.Steps {
		s := &ed.Steps[i]
		s.Name = entity.NormalizeText(s.Name)
		s.NewName = entity.NormalizeText(s.NewName)
		if s.Description != nil {
			d := entity.NormalizeText(*s.Description)
			s.Description = &d
		}
	}
}

// Marshal encodes an edition as YAML.
func Marshal(ed *FlowEdition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ed); err != nil {
		return nil, fmt.Errorf("encode edition: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode edition: %w", err)
	}
	return buf.Bytes(), nil
}

// FromFlow returns the edition that keeps every step of flow as is.
func FromFlow(flow *entity.Flow) *FlowEdition {
	ed := &FlowEdition{Name: flow.Name}
	if flow.Description != "" {
		d := flow.Description
		ed.Description = &d
	}
	if step, ok := flow.DefaultStep(); ok {
		ed.Default = step.Name
	}
	for _, step := range flow.OrderedSteps() {
		ed.Steps = append(ed.Steps, StepEdition{Action: ActionKeep, Name: step.Name})
	}
	return ed
}

// FromStepNames builds an edition creating a flow with plain steps, in order.
func FromStepNames(name string, steps []string, defaultStep string) *FlowEdition {
	ed := &FlowEdition{Name: name, Default: defaultStep}
	for _, step := range steps {
		ed.Steps = append(ed.Steps, StepEdition{Action: ActionAdd, Name: step})
	}
	ed.normalize()
	return ed
}
