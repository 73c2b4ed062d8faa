// hrflow is the command line front end for the HR assistant.
//
// Usage:
//
//	hrflow ask "screen the resume for Jane Doe"
//	hrflow ask --context candidate_name=Jane "schedule an interview"
//	hrflow workflow run employee_onboarding --thread ob-1 --employee emp-42
//	hrflow workflow state employee_onboarding ob-1
//	hrflow workflow resume employee_onboarding ob-1
//	hrflow workflow cancel employee_onboarding ob-1
//	hrflow capabilities
//	hrflow status
//	hrflow version
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BaSui01/hrflow"
	"github.com/BaSui01/hrflow/config"
	"github.com/BaSui01/hrflow/workflow"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "ask":
		runAsk(os.Args[2:])
	case "workflow":
		runWorkflow(os.Args[2:])
	case "capabilities":
		runCapabilities(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// contextFlags collects repeated --context key=value pairs.
type contextFlags map[string]any

func (c contextFlags) String() string { return fmt.Sprintf("%v", map[string]any(c)) }

func (c contextFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	c[key] = val
	return nil
}

func newAssistant(configPath string) *hrflow.Assistant {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	assistant, err := hrflow.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to assemble assistant: %v\n", err)
		os.Exit(1)
	}
	return assistant
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	reqCtx := contextFlags{}
	fs.Var(reqCtx, "context", "Request context as key=value (repeatable)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "ask requires a request")
		os.Exit(1)
	}
	request := strings.Join(fs.Args(), " ")

	assistant := newAssistant(*configPath)
	defer assistant.Close()

	ctx, cancel := signalContext()
	defer cancel()

	resp, err := assistant.Process(ctx, request, reqCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	printJSON(resp)
}

func runWorkflow(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "workflow requires a subcommand: run, state, resume or cancel")
		os.Exit(1)
	}

	switch args[0] {
	case "run":
		runWorkflowRun(args[1:])
	case "state":
		runWorkflowState(args[1:])
	case "resume":
		runWorkflowResume(args[1:])
	case "cancel":
		runWorkflowCancel(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown workflow subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func runWorkflowRun(args []string) {
	fs := flag.NewFlagSet("workflow run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	thread := fs.String("thread", "", "Thread id (generated when empty)")
	candidate := fs.String("candidate", "", "Candidate record id")
	employee := fs.String("employee", "", "Employee record id")
	job := fs.String("job", "", "Job record id")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "workflow run requires a workflow type")
		os.Exit(1)
	}
	workflowType := fs.Arg(0)

	assistant := newAssistant(*configPath)
	defer assistant.Close()

	ctx, cancel := signalContext()
	defer cancel()

	initial := &workflow.State{
		CandidateID: *candidate,
		EmployeeID:  *employee,
		JobID:       *job,
	}
	state, err := assistant.StartWorkflow(ctx, workflowType, initial, *thread)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Workflow failed: %v\n", err)
		os.Exit(1)
	}
	printJSON(state)
}

func workflowTarget(fs *flag.FlagSet, name string) (string, string) {
	if fs.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "workflow %s requires <workflow-type> <thread-id>\n", name)
		os.Exit(1)
	}
	return fs.Arg(0), fs.Arg(1)
}

func runWorkflowState(args []string) {
	fs := flag.NewFlagSet("workflow state", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)
	workflowType, thread := workflowTarget(fs, "state")

	assistant := newAssistant(*configPath)
	defer assistant.Close()

	ctx, cancel := signalContext()
	defer cancel()

	state, err := assistant.WorkflowState(ctx, workflowType, thread)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load state: %v\n", err)
		os.Exit(1)
	}
	if state == nil {
		fmt.Fprintf(os.Stderr, "No state for thread %s\n", thread)
		os.Exit(1)
	}
	printJSON(state)
}

func runWorkflowResume(args []string) {
	fs := flag.NewFlagSet("workflow resume", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)
	workflowType, thread := workflowTarget(fs, "resume")

	assistant := newAssistant(*configPath)
	defer assistant.Close()

	ctx, cancel := signalContext()
	defer cancel()

	state, err := assistant.ResumeWorkflow(ctx, workflowType, thread)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Resume failed: %v\n", err)
		os.Exit(1)
	}
	printJSON(state)
}

func runWorkflowCancel(args []string) {
	fs := flag.NewFlagSet("workflow cancel", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)
	workflowType, thread := workflowTarget(fs, "cancel")

	assistant := newAssistant(*configPath)
	defer assistant.Close()

	ctx, cancel := signalContext()
	defer cancel()

	ok, err := assistant.CancelWorkflow(ctx, workflowType, thread)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cancel failed: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "No run found for thread %s\n", thread)
		os.Exit(1)
	}
	fmt.Println("Cancelled")
}

func runCapabilities(args []string) {
	fs := flag.NewFlagSet("capabilities", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	assistant := newAssistant(*configPath)
	defer assistant.Close()

	printJSON(assistant.Capabilities())
}

func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	fs.Parse(args)

	assistant := newAssistant(*configPath)
	defer assistant.Close()

	printJSON(assistant.SystemStatus())
}

func printVersion() {
	fmt.Printf("hrflow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`hrflow - HR assistant

Usage:
  hrflow <command> [options]

Commands:
  ask           Route a request to the best handler
  workflow      Run and manage workflows (run, state, resume, cancel)
  capabilities  List handler capabilities
  status        Show assembled component summary
  version       Show version information
  help          Show this help message

Common options:
  --config <path>   Path to configuration file (YAML)

Options for 'ask':
  --context k=v     Request context entries (repeatable)

Options for 'workflow run':
  --thread <id>     Thread id for checkpointing
  --candidate <id>  Candidate record id
  --employee <id>   Employee record id
  --job <id>        Job record id`)
}
