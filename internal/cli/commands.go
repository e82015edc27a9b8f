package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/ruleflow"
	"github.com/aretw0/ruleflow/internal/config"
	"github.com/aretw0/ruleflow/internal/presentation/graph"
	"github.com/aretw0/ruleflow/internal/presentation/tui"
	"github.com/aretw0/ruleflow/pkg/adapters/file"
	"github.com/aretw0/ruleflow/pkg/adapters/memory"
	"github.com/aretw0/ruleflow/pkg/domain"
	"github.com/aretw0/ruleflow/pkg/validator"
)

// ErrInvalid is returned by RunValidate when at least one workflow failed.
var ErrInvalid = errors.New("one or more workflows are invalid")

type fileReport struct {
	File string `json:"file"`
	domain.ValidationReport
	Error string `json:"error,omitempty"`
}

// RunValidate validates each workflow file and prints one report per file.
// It returns ErrInvalid when any file is invalid or cannot be read.
func RunValidate(ctx context.Context, svc *ruleflow.Service, paths []string, jsonMode bool, out io.Writer) error {
	results := make([]fileReport, 0, len(paths))
	failed := false

	for _, path := range paths {
		res := fileReport{File: path, ValidationReport: domain.NewValidationReport()}

		wf, err := file.LoadWorkflow(path)
		if err == nil {
			var report domain.ValidationReport
			if report, err = svc.ValidateWorkflow(ctx, wf); err == nil {
				res.ValidationReport = report
			}
		}
		if err != nil {
			res.Valid = false
			res.Error = err.Error()
		}
		if !res.Valid {
			failed = true
		}
		results = append(results, res)
	}

	if jsonMode {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printer := tui.NewPrinter(out)
		for _, res := range results {
			if res.Error != "" {
				fmt.Fprintf(out, "## %s: error\n\n%s\n\n", res.File, res.Error)
				continue
			}
			if err := printer.Report(res.File, res.ValidationReport); err != nil {
				return err
			}
		}
	}

	if failed {
		return ErrInvalid
	}
	return nil
}

// RunGraph prints the Mermaid diagram of the workflow in path, highlighting
// the nodes that validation complains about.
func RunGraph(path string, out io.Writer) error {
	wf, err := file.LoadWorkflow(path)
	if err != nil {
		return err
	}

	var overlay *graph.GraphOverlay
	if validator.CheckIntegrity(*wf) == nil {
		overlay = graph.NewOverlay(*wf, validator.Validate(*wf))
	}

	_, err = io.WriteString(out, graph.GenerateMermaid(*wf, overlay))
	return err
}

// SynthOptions selects the rule to synthesize a payload for.
type SynthOptions struct {
	// File is a single rule definition (.json or .yaml). Exclusive with RulesDir.
	File string
	// RulesDir is a Loam repository of rules; RuleID picks one of them.
	RulesDir string
	RuleID   string
	// Evaluator, when its URL is set, receives the payload for a trial evaluation.
	Evaluator config.EvaluatorConfig
	JSON      bool
}

// RunSynth prints the synthesized payload of a rule and, with an evaluator, its verdict.
func RunSynth(ctx context.Context, opts SynthOptions, logger *slog.Logger, out io.Writer) error {
	svcOpts := []ruleflow.Option{ruleflow.WithLogger(logger)}
	ruleID := opts.RuleID

	switch {
	case opts.File != "" && opts.RulesDir != "":
		return errors.New("a rule file and --rules are mutually exclusive")
	case opts.File != "":
		rule, err := file.LoadRule(opts.File)
		if err != nil {
			return err
		}
		src, err := memory.NewRuleSource(*rule)
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, ruleflow.WithRuleSource(src))
		ruleID = rule.ID
	case opts.RulesDir != "":
		if ruleID == "" {
			return errors.New("--rule is required with --rules")
		}
		svcOpts = append(svcOpts, ruleflow.WithRulesDir(opts.RulesDir))
	default:
		return errors.New("a rule file or --rules DIR --rule ID is required")
	}

	if opts.Evaluator.URL != "" {
		svcOpts = append(svcOpts, ruleflow.WithEvaluator(NewEvaluator(opts.Evaluator)))
	}

	svc, err := ruleflow.New(svcOpts...)
	if err != nil {
		return err
	}

	if opts.Evaluator.URL == "" {
		rule, err := svc.GetRule(ctx, ruleID)
		if err != nil {
			return err
		}
		payload := svc.SynthesizeTestData(rule.Conditions)
		if err := ruleflow.CheckPayload(rule, payload); err != nil {
			return err
		}
		return writeJSON(out, payload)
	}

	res, err := svc.TestRule(ctx, ruleID)
	if err != nil {
		return err
	}
	if opts.JSON {
		return writeJSON(out, res)
	}
	return tui.NewPrinter(out).Verdict(res.RuleID, res.Data, res.Verdict)
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// ExpandPaths replaces each directory in paths with the workflow files
// (.json, .yaml, .yml) it contains, in name order.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".json", ".yaml", ".yml":
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}
