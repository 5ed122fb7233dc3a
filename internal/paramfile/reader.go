// SPDX-License-Identifier: AGPL-3.0-or-later

// Package paramfile reads task parameter files. Each task declares its
// accepted parameters in an XML document named <task>.par, discovered in the
// config/ subdirectory of each search-path entry. Parsing produces a flat
// registry of ParameterSpec values plus the parameter tree and mandatory
// closure the resolver needs.
package paramfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"github.com/sasrun-org/sasrun/internal/types"
)

// NotFoundError indicates no parameter file matched <task>.par on the
// search path.
type NotFoundError struct {
	Task string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no parameter file %s.par found on search path, wrong task name?", e.Task)
}

// ParseError indicates a parameter file exists but could not be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse parameter file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Schema is the parsed, immutable view of one parameter file. It is built
// fresh per invocation and never cached or mutated after Parse returns.
type Schema struct {
	Task string
	Path string

	// Registry maps id -> spec, duplicate ids last-wins.
	Registry map[string]types.ParameterSpec
	// Order lists ids in document order (first occurrence).
	Order []string
	// Tree maps every id to the flattened, document-ordered list of ALL
	// parameter ids nested below its declaration, not just direct children.
	Tree map[string][]string
	// TopLevel lists ids declared directly under a CONFIG block.
	TopLevel []string
	// Mandatory lists ids declared mandatory="yes", document order.
	Mandatory []string
	// Closure maps a parent id to its mandatory children. A mandatory
	// top-level id is attributed to itself and appears in its own list.
	Closure map[string][]string
	// ClosureParents fixes the iteration order of Closure.
	ClosureParents []string
}

// Locate finds the parameter file for a task by scanning the config/
// subdirectory of each search-path entry in order.
func Locate(searchPath []string, task string) (string, error) {
	pattern := task + ".par"
	for _, entry := range searchPath {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		matches, err := filepath.Glob(filepath.Join(entry, "config", pattern))
		if err != nil {
			continue
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", &NotFoundError{Task: task}
}

// Read locates and parses the parameter file for a task.
func Read(searchPath []string, task string) (*Schema, error) {
	path, err := Locate(searchPath, task)
	if err != nil {
		return nil, err
	}
	s, err := Parse(path)
	if err != nil {
		return nil, err
	}
	s.Task = task
	return s, nil
}

// Parse reads one parameter file into a Schema. The document is walked in
// document order throughout, which makes the derived structures
// deterministic for a given file.
func Parse(path string) (*Schema, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	params := doc.FindElements("//PARAM")

	s := &Schema{
		Path:     path,
		Registry: make(map[string]types.ParameterSpec, len(params)),
		Tree:     make(map[string][]string, len(params)),
		Closure:  make(map[string][]string),
	}

	for _, el := range params {
		spec, err := specFromElement(el)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		if _, seen := s.Registry[spec.ID]; !seen {
			s.Order = append(s.Order, spec.ID)
		}
		// Duplicate ids: the later declaration wins, matching the
		// historical parameter-file behaviour.
		s.Registry[spec.ID] = spec

		if el.Parent() != nil && el.Parent().Tag == "CONFIG" {
			s.TopLevel = append(s.TopLevel, spec.ID)
		}

		var descendants []string
		for _, sub := range el.FindElements(".//PARAM") {
			descendants = append(descendants, sub.SelectAttrValue("id", ""))
		}
		s.Tree[spec.ID] = descendants
	}

	for _, el := range params {
		if el.SelectAttrValue("mandatory", "no") == "yes" {
			id := el.SelectAttrValue("id", "")
			if !containsString(s.Mandatory, id) {
				s.Mandatory = append(s.Mandatory, id)
			}
		}
	}

	s.buildClosure()
	return s, nil
}

// buildClosure attributes every mandatory id to exactly one parent: itself
// when top-level, otherwise the first declared parameter whose flattened
// descendant list contains it. Ancestors precede descendants in document
// order, so the outermost parent wins.
func (s *Schema) buildClosure() {
	for _, m := range s.Mandatory {
		parent := ""
		if containsString(s.TopLevel, m) {
			parent = m
		} else {
			for _, id := range s.Order {
				if containsString(s.Tree[id], m) {
					parent = id
					break
				}
			}
		}
		if parent == "" {
			// Mandatory id declared outside any CONFIG block; nothing
			// can require it, skip.
			continue
		}
		if _, seen := s.Closure[parent]; !seen {
			s.ClosureParents = append(s.ClosureParents, parent)
		}
		s.Closure[parent] = append(s.Closure[parent], m)
	}
}

// MandatoryChildren returns the mandatory sub-parameters attributed to
// parent, excluding the parent itself.
func (s *Schema) MandatoryChildren(parent string) []string {
	var out []string
	for _, c := range s.Closure[parent] {
		if c != parent {
			out = append(out, c)
		}
	}
	return out
}

func specFromElement(el *etree.Element) (types.ParameterSpec, error) {
	var spec types.ParameterSpec

	spec.ID = el.SelectAttrValue("id", "")
	if spec.ID == "" {
		return spec, fmt.Errorf("PARAM element missing id attribute")
	}
	spec.Type = types.ParameterType(el.SelectAttrValue("type", ""))
	spec.Mandatory = el.SelectAttrValue("mandatory", "no") == "yes"
	spec.List = el.SelectAttrValue("list", "no") == "yes"
	spec.Default = el.SelectAttrValue("default", "")

	if d := el.SelectElement("DESCRIPTION"); d != nil {
		spec.Description = strings.TrimSpace(d.Text())
	}
	if c := el.SelectElement("CONSTRAINTS"); c != nil {
		spec.Constraints = strings.TrimSpace(c.Text())
	}
	if spec.Type == types.TypeString {
		if caseEl := el.SelectElement("CASE"); caseEl != nil {
			for _, item := range caseEl.SelectElements("ITEM") {
				if v := item.SelectAttrValue("value", ""); v != "" {
					spec.Alternatives = append(spec.Alternatives, v)
				}
			}
		}
	}
	return spec, nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
