package config

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/indaco/pkgmeta/internal/core"
	"github.com/indaco/pkgmeta/internal/descriptor"
	"github.com/indaco/pkgmeta/internal/parser"
)

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	// Category is the validation category (e.g., "Source", "Metadata").
	Category string

	// Passed indicates if the check passed.
	Passed bool

	// Message provides details about the validation result.
	Message string

	// Warning indicates if this is a warning rather than an error.
	Warning bool
}

// Validator validates a configuration before it is used.
type Validator struct {
	fs          core.FileSystem
	cfg         *Config
	validations []ValidationResult
}

// NewValidator creates a new configuration validator.
func NewValidator(fs core.FileSystem, cfg *Config) *Validator {
	return &Validator{
		fs:          fs,
		cfg:         cfg,
		validations: make([]ValidationResult, 0),
	}
}

// consoleScriptRegex matches "name = module:function" entry points.
var consoleScriptRegex = regexp.MustCompile(`^[A-Za-z0-9][\w.\-]*\s*=\s*[\w.]+:[\w.]+$`)

// Validate runs all validation checks and returns the results.
func (v *Validator) Validate(ctx context.Context) ([]ValidationResult, error) {
	v.validations = make([]ValidationResult, 0)

	v.validateSource()
	if err := v.validateMetadata(ctx); err != nil {
		return nil, err
	}
	v.validatePublish()
	v.validateSync()

	return v.validations, nil
}

func (v *Validator) addValidation(category string, passed bool, message string, warning bool) {
	v.validations = append(v.validations, ValidationResult{
		Category: category,
		Passed:   passed,
		Message:  message,
		Warning:  warning,
	})
}

func (v *Validator) validateSource() {
	src := v.cfg.Source
	if src.Path == "" {
		v.addValidation("Source", false, "source.path is required", false)
		return
	}

	format := parser.Format(src.Format)
	if !format.IsValid() {
		v.addValidation("Source", false, fmt.Sprintf("unknown source.format %q", src.Format), false)
		return
	}

	switch format {
	case parser.FormatRegex:
		if _, err := parser.CompilePattern(src.Pattern); err != nil {
			v.addValidation("Source", false, err.Error(), false)
			return
		}
	case parser.FormatJSON, parser.FormatYAML, parser.FormatTOML:
		if src.Field == "" {
			v.addValidation("Source", false, fmt.Sprintf("source.field is required for %s format", format), false)
			return
		}
	}

	msg := fmt.Sprintf("version read from %s (%s)", src.Path, format)
	if src.Script != "" {
		msg = fmt.Sprintf("version read from %s via alias %s (%s)", src.Script, src.Path, format)
	}
	v.addValidation("Source", true, msg, false)
}

func (v *Validator) validateMetadata(ctx context.Context) error {
	md, err := ResolveMetadata(ctx, v.fs, v.cfg)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		v.addValidation("Metadata", false, err.Error(), false)
		return nil
	}

	required := []struct {
		name  string
		value string
	}{
		{"name", md.Name},
		{"url", md.URL},
		{"license", md.License},
		{"author", md.Author},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		v.addValidation("Metadata", false, "missing required fields: "+strings.Join(missing, ", "), false)
	} else {
		v.addValidation("Metadata", true, fmt.Sprintf("static metadata for %q is complete", md.Name), false)
	}

	if md.PythonRequires == "" {
		v.addValidation("Metadata", false, "python_requires is not set", true)
	}

	for _, c := range md.Classifiers {
		if !strings.Contains(c, " :: ") {
			v.addValidation("Classifiers", false, fmt.Sprintf("classifier %q is not of the form 'Group :: Value'", c), false)
		}
	}

	for _, ep := range md.EntryPoints.ConsoleScripts {
		if !consoleScriptRegex.MatchString(ep) {
			v.addValidation("Entry Points", false, fmt.Sprintf("console script %q is not of the form 'name = module:function'", ep), false)
		}
	}
	return nil
}

func (v *Validator) validatePublish() {
	if _, err := descriptor.ParseFormat(v.cfg.Publish.Format); err != nil {
		v.addValidation("Publish", false, err.Error(), false)
	}
	if len(v.cfg.Publish.Args) > 0 && v.cfg.Publish.Command == "" {
		v.addValidation("Publish", false, "publish.args is set without publish.command", true)
	}
}

func (v *Validator) validateSync() {
	for i, f := range v.cfg.Sync {
		if f.Path == "" {
			v.addValidation("Sync", false, fmt.Sprintf("sync[%d]: path is required", i), false)
			continue
		}
		fc := f.FileConfig(v.cfg.Root)
		if !fc.Format.IsValid() {
			v.addValidation("Sync", false, fmt.Sprintf("sync[%d]: unknown format %q", i, f.Format), false)
			continue
		}
		if fc.Format == parser.FormatRegex {
			if _, err := parser.CompilePattern(fc.Pattern); err != nil {
				v.addValidation("Sync", false, fmt.Sprintf("sync[%d]: %v", i, err), false)
			}
		}
	}
}

// HasErrors returns true if any validation failed.
func HasErrors(results []ValidationResult) bool {
	return ErrorCount(results) > 0
}

// ErrorCount returns the number of failed validations.
func ErrorCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if !r.Passed && !r.Warning {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warnings.
func WarningCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if r.Warning {
			count++
		}
	}
	return count
}
