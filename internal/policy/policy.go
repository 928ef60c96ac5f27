// Package policy loads the versioned route policy: which paths are auth pages, which are
// protected, which permissions each restricted section needs, and which requests bypass
// the gate. Documents are YAML, validated against an embedded JSON Schema and compiled
// into a gate.Classifier.
package policy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/domain/gate"
)

//go:embed default.yaml
var defaultDocument []byte

//go:embed schema.json
var schemaDocument []byte

const schemaURL = "inmemory://portalgate/policy.schema.json"

// Document is the on-disk shape of a policy.
type Document struct {
	Version         int      `yaml:"version"`
	SignInPath      string   `yaml:"sign_in_path"`
	HomePath        string   `yaml:"home_path"`
	NotFoundPath    string   `yaml:"not_found_path"`
	RedirectParam   string   `yaml:"redirect_param"`
	Unauthenticated string   `yaml:"unauthenticated"`
	AuthPages       []string `yaml:"auth_pages"`
	ProtectedRoots  []string `yaml:"protected_roots"`
	RestrictedRoots []string `yaml:"restricted_roots"`
	Routes          []Route  `yaml:"routes"`
	Exclude         []string `yaml:"exclude"`
}

// Route is one classification rule. Exactly one of Path (exact match) or Prefix is set.
type Route struct {
	Path    string   `yaml:"path,omitempty"`
	Prefix  string   `yaml:"prefix,omitempty"`
	Require []string `yaml:"require"`
}

// Policy is a validated, compiled policy document.
type Policy struct {
	Version    int
	Source     string
	Settings   gate.Settings
	Classifier *gate.Classifier
	Exclude    *Matcher
	Document   Document
}

// Default returns the embedded policy.
func Default() (*Policy, error) {
	return Parse("embedded:default.yaml", defaultDocument)
}

// Load reads and compiles the policy at path; an empty path yields the default policy.
func Load(path string) (*Policy, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return Parse(path, data)
}

// Parse validates data against the policy schema and compiles it. source is used in
// error messages and reported by Policy.Source.
func Parse(source string, data []byte) (*Policy, error) {
	if err := validate(data); err != nil {
		return nil, fmt.Errorf("policy %s: %w", source, err)
	}

	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("policy %s: decode: %w", source, err)
	}

	p, err := compile(doc)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", source, err)
	}
	p.Source = source
	return p, nil
}

func compile(doc Document) (*Policy, error) {
	settings := gate.Settings{
		SignInPath:      valueOr(doc.SignInPath, "/signin"),
		HomePath:        valueOr(doc.HomePath, "/"),
		NotFoundPath:    valueOr(doc.NotFoundPath, "/not-found"),
		RedirectParam:   valueOr(doc.RedirectParam, gate.DefaultRedirectParam),
		Unauthenticated: gate.UnauthenticatedAction(valueOr(doc.Unauthenticated, string(gate.UnauthenticatedRewrite))),
	}

	rules := make([]gate.Rule, 0, len(doc.Routes))
	for i, r := range doc.Routes {
		rule, err := compileRoute(r)
		if err != nil {
			return nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
		rules = append(rules, rule)
	}

	classifier, err := gate.NewClassifier(gate.ClassifierConfig{
		AuthPages:       doc.AuthPages,
		ProtectedRoots:  doc.ProtectedRoots,
		RestrictedRoots: doc.RestrictedRoots,
		Rules:           rules,
	})
	if err != nil {
		return nil, err
	}

	// The not-found page must stay reachable without a session, or a rewrite would loop.
	if c := classifier.Classify(settings.NotFoundPath); c.Class != gate.ClassPublic {
		return nil, fmt.Errorf("not_found_path %q must be public, got %s", settings.NotFoundPath, c.Class)
	}
	if c := classifier.Classify(settings.SignInPath); c.Class == gate.ClassProtected {
		return nil, fmt.Errorf("sign_in_path %q must not be protected", settings.SignInPath)
	}

	exclude, err := NewMatcher(doc.Exclude)
	if err != nil {
		return nil, err
	}

	return &Policy{
		Version:    doc.Version,
		Settings:   settings,
		Classifier: classifier,
		Exclude:    exclude,
		Document:   doc,
	}, nil
}

func compileRoute(r Route) (gate.Rule, error) {
	if (r.Path == "") == (r.Prefix == "") {
		return gate.Rule{}, errors.New("exactly one of path or prefix is required")
	}
	required, rejected := domainauth.ParsePermissions(r.Require)
	if len(rejected) > 0 {
		return gate.Rule{}, fmt.Errorf("unknown permissions %v", rejected)
	}
	if r.Path != "" {
		return gate.Rule{Path: r.Path, Exact: true, Required: required}, nil
	}
	return gate.Rule{Path: r.Prefix, Required: required}, nil
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func policySchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaDocument)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validate checks the raw YAML against the schema. YAML is re-encoded as JSON first so
// the validator sees JSON types.
func validate(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if raw == nil {
		return errors.New("policy document is empty")
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalize policy: %w", err)
	}
	var value any
	if err := json.Unmarshal(encoded, &value); err != nil {
		return fmt.Errorf("normalize policy: %w", err)
	}

	schema, err := policySchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
