package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	domaingate "pawsense/internal/chat/domain-gate"
	emergencydetector "pawsense/internal/chat/emergency-detector"
	intentclassifier "pawsense/internal/chat/intent-classifier"
	"pawsense/pkg/lexicon"
)

func main() {
	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		path := fs.String("path", "", "Path to lexicon file (empty uses the embedded default)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return validateLexicon(*path, out)

	case "stats":
		fs := flag.NewFlagSet("stats", flag.ContinueOnError)
		path := fs.String("path", "", "Path to lexicon file (empty uses the embedded default)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return printStats(*path, out)

	case "add":
		fs := flag.NewFlagSet("add", flag.ContinueOnError)
		path := fs.String("path", "", "Path to lexicon file to update")
		table := fs.String("table", "", "Table: domain, medical, training or emergency")
		term := fs.String("term", "", "Term to add")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *path == "" || *table == "" || *term == "" {
			return errors.New("path, table and term are required for add")
		}
		return addTerm(*path, *table, *term, out)

	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		outPath := fs.String("out", "lexicon.json", "Where to write the embedded default lexicon")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if err := lexicon.Default().Save(*outPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote default lexicon to %s\n", *outPath)
		return nil

	case "route":
		fs := flag.NewFlagSet("route", flag.ContinueOnError)
		path := fs.String("path", "", "Path to lexicon file (empty uses the embedded default)")
		question := fs.String("question", "", "Question to route")
		context := fs.String("context", "", "Optional dog context")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return routeQuestion(*path, *question, *context, out)

	case "help":
		help(out)
		return nil

	default:
		help(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func validateLexicon(path string, out io.Writer) error {
	lex, err := lexicon.Load(path)
	if err != nil {
		return fmt.Errorf("lexicon validation failed: %w", err)
	}

	for _, table := range []string{lexicon.TableMedical, lexicon.TableTraining} {
		pairs, err := lex.Redundant(table)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			fmt.Fprintf(out, "warning: %s term %q already contains %q and scores twice\n", table, p[0], p[1])
		}
	}

	fmt.Fprintln(out, "Lexicon validation passed.")
	return nil
}

func printStats(path string, out io.Writer) error {
	lex, err := lexicon.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "version:   %s (%s)\n", lex.Version, lex.Language)
	fmt.Fprintf(out, "domain:    %d\n", len(lex.Domain))
	fmt.Fprintf(out, "medical:   %d\n", len(lex.Medical))
	fmt.Fprintf(out, "training:  %d\n", len(lex.Training))
	fmt.Fprintf(out, "emergency: %d\n", len(lex.Emergency))
	for intent, urls := range lex.References {
		fmt.Fprintf(out, "references[%s]: %d\n", intent, len(urls))
	}
	return nil
}

func addTerm(path, table, term string, out io.Writer) error {
	lex, err := lexicon.Load(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load lexicon: %w", err)
		}
		lex = lexicon.Default()
	}

	if err := lex.AddTerm(table, term); err != nil {
		return err
	}
	if err := lex.Validate(); err != nil {
		return fmt.Errorf("term would make the lexicon invalid: %w", err)
	}
	if err := lex.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Added %q to %s\n", term, table)
	return nil
}

func routeQuestion(path, question, context string, out io.Writer) error {
	if question == "" {
		return errors.New("question is required for route")
	}
	lex, err := lexicon.Load(path)
	if err != nil {
		return err
	}

	gate := domaingate.New(lex)
	classifier := intentclassifier.New(lex)
	detector := emergencydetector.New(lex)

	if !gate.IsInDomain(question, context) {
		fmt.Fprintln(out, "in domain: no")
		return nil
	}
	scores := classifier.Score(question, context)
	fmt.Fprintf(out, "in domain: yes (matched %q)\n", gate.Match(question, context))
	fmt.Fprintf(out, "intent:    %s (medical=%d training=%d)\n", intentclassifier.Decide(scores), scores.Medical, scores.Training)
	if term := detector.Match(question, context); term != "" {
		fmt.Fprintf(out, "emergency: yes (matched %q)\n", term)
	} else {
		fmt.Fprintln(out, "emergency: no")
	}
	return nil
}

func help(out io.Writer) {
	fmt.Fprintln(out, "Lexicon Lint")
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "  lexicon-lint validate [-path <file>]")
	fmt.Fprintln(out, "  lexicon-lint stats [-path <file>]")
	fmt.Fprintln(out, "  lexicon-lint add -path <file> -table <domain|medical|training|emergency> -term <term>")
	fmt.Fprintln(out, "  lexicon-lint export [-out <file>]")
	fmt.Fprintln(out, "  lexicon-lint route -question <text> [-context <text>] [-path <file>]")
}
