package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/skosovsky/trident"
)

// callRequest is the parsed form of a call invocation.
type callRequest struct {
	endpoint   string
	params     map[string]any
	paramsJSON string
	raw        bool
	timeout    time.Duration
	help       bool
}

// newCallCmd creates the call command. Flag parsing is disabled so
// single-dash tokens become endpoint parameters instead of cobra flags.
func (a *App) newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <endpoint> [-param value ...]",
		Short: "Call an endpoint and print its result",
		Long: `Call an endpoint and print its result as JSON.

Parameters are given as -name value pairs and coerced to JSON types
(booleans, numbers, inline JSON objects and arrays, strings), or as a
single --params-json document.`,
		Example: `  trident call echo -message hi
  trident call add -a 2 -b 40
  trident call echo --params-json '{"message":"hi"}' --raw`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseCallArgs(args)
			if err != nil {
				return err
			}
			if req.help {
				return cmd.Help()
			}
			return a.executeCall(cmd.Context(), req)
		},
	}
}

// executeCall runs one endpoint call end to end. Execution failures
// print the error envelope to stderr and report exit status through
// errReported.
func (a *App) executeCall(ctx context.Context, req callRequest) error {
	args, err := req.argsJSON()
	if err != nil {
		return err
	}
	if req.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.timeout)
		defer cancel()
	}

	call := trident.Call{ID: uuid.NewString(), Name: req.endpoint, Args: args}
	out, err := a.reg.Execute(ctx, call)
	if err != nil {
		a.printError(err)
		return errReported
	}
	return a.printResult(out, req.raw)
}

// argsJSON builds the arguments document for the call.
func (r callRequest) argsJSON() (json.RawMessage, error) {
	if r.paramsJSON != "" {
		return json.RawMessage(r.paramsJSON), nil
	}
	if len(r.params) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(r.params)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}
	return data, nil
}

// parseCallArgs parses the call command line: the first bare token is
// the endpoint name, --flags configure the call, and -name value pairs
// become endpoint parameters.
func parseCallArgs(args []string) (callRequest, error) {
	req := callRequest{params: map[string]any{}}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--help" || arg == "-h":
			req.help = true
			return req, nil

		case arg == "--raw":
			req.raw = true

		case strings.HasPrefix(arg, "--params-json"):
			value, used, err := flagValue(arg, "--params-json", args[i+1:])
			if err != nil {
				return callRequest{}, err
			}
			req.paramsJSON = value
			i += used

		case strings.HasPrefix(arg, "--timeout"):
			value, used, err := flagValue(arg, "--timeout", args[i+1:])
			if err != nil {
				return callRequest{}, err
			}
			d, err := time.ParseDuration(value)
			if err != nil {
				return callRequest{}, fmt.Errorf("invalid --timeout %q: %w", value, err)
			}
			req.timeout = d
			i += used

		case strings.HasPrefix(arg, "--"):
			return callRequest{}, fmt.Errorf("unknown flag %q", arg)

		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			name, value, used, err := paramValue(arg, args[i+1:])
			if err != nil {
				return callRequest{}, err
			}
			req.params[name] = coerceValue(value)
			i += used

		default:
			if req.endpoint != "" {
				return callRequest{}, fmt.Errorf("unexpected argument %q", arg)
			}
			req.endpoint = arg
		}
	}

	if req.endpoint == "" {
		return callRequest{}, fmt.Errorf("endpoint name is required")
	}
	if req.paramsJSON != "" && len(req.params) > 0 {
		return callRequest{}, fmt.Errorf("--params-json cannot be combined with -name value parameters")
	}
	return req, nil
}

// flagValue extracts the value of a --flag, either inline (--flag=v) or
// from the next token. used reports how many extra tokens were consumed.
func flagValue(arg, flag string, rest []string) (value string, used int, err error) {
	if after, ok := strings.CutPrefix(arg, flag+"="); ok {
		return after, 0, nil
	}
	if arg != flag {
		return "", 0, fmt.Errorf("unknown flag %q", arg)
	}
	if len(rest) == 0 {
		return "", 0, fmt.Errorf("missing value for %s", flag)
	}
	return rest[0], 1, nil
}

// paramValue extracts a -name value parameter pair, either inline
// (-name=v) or from the next token.
func paramValue(arg string, rest []string) (name, value string, used int, err error) {
	body := strings.TrimPrefix(arg, "-")
	if name, value, ok := strings.Cut(body, "="); ok {
		return name, value, 0, nil
	}
	if len(rest) == 0 {
		return "", "", 0, fmt.Errorf("missing value for parameter -%s", body)
	}
	return body, rest[0], 1, nil
}

// coerceValue maps a command-line token to the JSON type a schema most
// likely expects: booleans, integers, floats, inline JSON documents,
// and finally plain strings.
func coerceValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}
	return s
}

// printResult renders a successful call. --raw unwraps a bare JSON
// primitive, or a single-key object holding one, to its plain value.
func (a *App) printResult(out json.RawMessage, raw bool) error {
	if raw {
		if s, ok := unwrapPrimitive(out); ok {
			fmt.Fprintln(a.stdout, s)
			return nil
		}
	}
	var v any
	if err := json.Unmarshal(out, &v); err != nil {
		fmt.Fprintln(a.stdout, string(out))
		return nil
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printError writes the error envelope shared with the REST adapter to
// stderr.
func (a *App) printError(err error) {
	terr := trident.Normalize(err)
	data, merr := json.Marshal(struct {
		Error *trident.Error `json:"error"`
	}{Error: terr})
	if merr != nil {
		fmt.Fprintln(a.stderr, `{"error":{"name":"InternalServerError","code":"INTERNAL_SERVER_ERROR","message":"internal error while executing endpoint"}}`)
		return
	}
	fmt.Fprintln(a.stderr, string(data))
}

// unwrapPrimitive reports the plain rendering of a primitive result.
func unwrapPrimitive(out json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(out, &v); err != nil {
		return "", false
	}
	if s, ok := primitiveString(v); ok {
		return s, true
	}
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		for _, inner := range m {
			return primitiveString(inner)
		}
	}
	return "", false
}

// primitiveString formats strings, numbers, booleans, and null.
func primitiveString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case nil:
		return "null", true
	default:
		return "", false
	}
}
