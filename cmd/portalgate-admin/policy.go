package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	domainauth "github.com/lumicrm/portalgate/internal/domain/auth"
	"github.com/lumicrm/portalgate/internal/policy"
)

type policyExplainOptions struct {
	File       string
	Anonymous  bool
	Perms      []string
	RedirectTo string
	Paths      []string
}

type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// policyFile resolves the file argument, falling back to GATE_POLICY_FILE and then the embedded default.
func policyFile(cmdCtx *commandContext, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return cmdCtx.Config.Gate.PolicyFile
}

func parsePolicyCheckFlags(args []string) (string, error) {
	fs := flag.NewFlagSet("policy-check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	fs.StringVar(&file, "file", "", "Policy file to validate (defaults to GATE_POLICY_FILE or the embedded policy)")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if file == "" && fs.NArg() > 0 {
		file = fs.Arg(0)
	}
	return file, nil
}

func runPolicyCheck(cmdCtx *commandContext, args []string) error {
	file, err := parsePolicyCheckFlags(args)
	if err != nil {
		return err
	}
	p, err := policy.Load(policyFile(cmdCtx, file))
	if err != nil {
		return err
	}
	return printPolicySummary(cmdCtx.Out, p)
}

func printPolicySummary(w io.Writer, p *policy.Policy) error {
	if err := writef(w, "policy %s (version %d) is valid\n", p.Source, p.Version); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"sign-in path", p.Settings.SignInPath},
		{"home path", p.Settings.HomePath},
		{"not-found path", p.Settings.NotFoundPath},
		{"unauthenticated", string(p.Settings.Unauthenticated)},
		{"routes", strconv.Itoa(len(p.Document.Routes))},
		{"exclude patterns", strings.Join(p.Exclude.Patterns(), " ")},
	}
	for _, row := range rows {
		if err := writef(tw, "  %s:\t%s\n", row[0], row[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func parsePolicyExplainFlags(args []string) (policyExplainOptions, error) {
	fs := flag.NewFlagSet("policy-explain", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts policyExplainOptions
	var perms stringList
	fs.StringVar(&opts.File, "file", "", "Policy file (defaults to GATE_POLICY_FILE or the embedded policy)")
	fs.BoolVar(&opts.Anonymous, "anonymous", false, "Explain for a caller without a session")
	fs.Var(&perms, "perm", "Permission tag held by the caller (repeatable, comma separated)")
	fs.StringVar(&opts.RedirectTo, "redirect-to", "", "redirectTo value to assume on sign-in pages")

	if err := fs.Parse(args); err != nil {
		return policyExplainOptions{}, err
	}
	if fs.NArg() == 0 {
		return policyExplainOptions{}, errors.New("at least one path is required")
	}
	if opts.Anonymous && len(perms) > 0 {
		return policyExplainOptions{}, errors.New("--perm cannot be combined with --anonymous")
	}
	opts.Perms = splitList(perms)
	opts.Paths = fs.Args()
	return opts, nil
}

func runPolicyExplain(cmdCtx *commandContext, args []string) error {
	opts, err := parsePolicyExplainFlags(args)
	if err != nil {
		return err
	}
	p, err := policy.Load(policyFile(cmdCtx, opts.File))
	if err != nil {
		return err
	}
	return explainPaths(cmdCtx.Out, p, opts)
}

func explainPaths(w io.Writer, p *policy.Policy, opts policyExplainOptions) error {
	perms, rejected := domainauth.ParsePermissions(opts.Perms)
	if len(rejected) > 0 {
		return errors.New("unknown permission tags: " + strings.Join(rejected, ", "))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "PATH\tCLASS\tREQUIRES\tOUTCOME\tTARGET\tREASON\n"); err != nil {
		return err
	}
	for _, path := range opts.Paths {
		ex := p.Explain(policy.ExplainInput{
			Path:          path,
			Authenticated: !opts.Anonymous,
			Permissions:   perms,
			RedirectTo:    opts.RedirectTo,
		})
		class := ex.Classification.Class.String()
		if ex.Excluded {
			class = "excluded"
		}
		target := ex.Decision.Target
		if target == "" {
			target = "-"
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			path, class, formatPermissions(ex.Classification.Required),
			ex.Decision.Outcome, target, ex.Decision.Reason); err != nil {
			return err
		}
	}
	return tw.Flush()
}
