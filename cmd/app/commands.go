package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	"pyth_index/internal/app"
	"pyth_index/internal/domain"
	"pyth_index/internal/engine"
	"pyth_index/internal/event"
	"pyth_index/internal/layout"
)

// Set with -ldflags "-X main.version=... -X main.gitCommit=..."
var (
	version   = "dev"
	gitCommit = "unknown"
)

const usage = `usage: pyth-index [-config path] <command> [args]

commands:
  decode -type price|product|mapping <key>
  price <product> <price>
  product <product>
  mapping [-from slot] <mapping>
  enumerate <mapping>
  walk [-max-pages n] <mapping>
  pair <product> <price>
  verify <mapping>
  index create <name> [key...]
  index delete <id> | index delete -name <name>
  index list
  index show <id> | index show -name <name>
  index snapshot <id> <product> <price>
  accounts list
  accounts import <key> <file>
`

var errUsage = errors.New("invalid arguments")

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("pyth-index", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", app.DefaultConfigPath, "Path to the configuration file")
	versionFlag := global.Bool("version", false, "Show version information")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "pyth-index version %s\n", version)
		fmt.Fprintf(stdout, "Git commit: %s\n", gitCommit)
		fmt.Fprintf(stdout, "Go version: %s\n", runtime.Version())
		return 0
	}
	if global.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	in, err := parseCommand(global.Args(), stderr)
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
			return 2
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	// System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		fmt.Fprintf(stderr, "bootstrapping failed: %v\n", err)
		return 1
	}
	defer bootstrap.Close()

	return execute(ctx, bootstrap.Processor, in, stdout, stderr)
}

// execute submits in to a running processor and prints its result as JSON.
func execute(ctx context.Context, p *engine.Processor, in event.Instruction, stdout, stderr io.Writer) int {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go p.Run(ctx)

	in.SetSeq(p.NextSeq())
	select {
	case p.Inbox() <- in:
	case <-ctx.Done():
		fmt.Fprintf(stderr, "error: %v\n", ctx.Err())
		return 1
	}

	var res event.Result
	select {
	case res = <-p.Results():
		event.Release(in)
	case <-ctx.Done():
		fmt.Fprintf(stderr, "error: %v\n", ctx.Err())
		return 1
	}

	value, err := res.Value, res.Err
	if err != nil {
		slog.Debug("Command failed", slog.String("op", res.Type.String()), slog.Any("error", err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, domain.ErrNotFound) {
			return 3
		}
		return 1
	}
	if value == nil {
		value = map[string]string{"status": "ok"}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		fmt.Fprintf(stderr, "failed to encode result: %v\n", err)
		return 1
	}
	return 0
}

func parseCommand(args []string, stderr io.Writer) (event.Instruction, error) {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "decode":
		fs := newFlagSet(cmd, stderr)
		kind := fs.String("type", "price", "Account type: price, product or mapping")
		if err := fs.Parse(rest); err != nil {
			return nil, errUsage
		}
		keys, err := parseKeys(fs.Args(), 1)
		if err != nil {
			return nil, err
		}
		at, err := parseAccountType(*kind)
		if err != nil {
			return nil, err
		}
		return &event.DecodeAccountInstruction{Key: keys[0], Kind: at}, nil

	case "price":
		keys, err := parseKeys(rest, 2)
		if err != nil {
			return nil, err
		}
		in := event.AcquireShowPriceInstruction()
		in.Product, in.Price = keys[0], keys[1]
		return in, nil

	case "product":
		keys, err := parseKeys(rest, 1)
		if err != nil {
			return nil, err
		}
		return &event.ShowProductInstruction{Product: keys[0]}, nil

	case "mapping":
		fs := newFlagSet(cmd, stderr)
		from := fs.Int("from", 0, "First slot to enumerate")
		if err := fs.Parse(rest); err != nil {
			return nil, errUsage
		}
		keys, err := parseKeys(fs.Args(), 1)
		if err != nil {
			return nil, err
		}
		in := event.AcquireShowMappingInstruction()
		in.Mapping, in.From = keys[0], *from
		return in, nil

	case "enumerate":
		keys, err := parseKeys(rest, 1)
		if err != nil {
			return nil, err
		}
		return &event.EnumerateProductsInstruction{Mapping: keys[0]}, nil

	case "walk":
		fs := newFlagSet(cmd, stderr)
		maxPages := fs.Int("max-pages", 0, "Maximum mapping pages to follow (0 = default)")
		if err := fs.Parse(rest); err != nil {
			return nil, errUsage
		}
		keys, err := parseKeys(fs.Args(), 1)
		if err != nil {
			return nil, err
		}
		return &event.WalkMappingsInstruction{First: keys[0], MaxPages: *maxPages}, nil

	case "pair":
		keys, err := parseKeys(rest, 2)
		if err != nil {
			return nil, err
		}
		return &event.ValidatePairInstruction{Product: keys[0], Price: keys[1]}, nil

	case "verify":
		keys, err := parseKeys(rest, 1)
		if err != nil {
			return nil, err
		}
		return &event.VerifyMappingInstruction{Mapping: keys[0]}, nil

	case "index":
		return parseIndexCommand(rest, stderr)

	case "accounts":
		return parseAccountsCommand(rest)

	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func parseIndexCommand(args []string, stderr io.Writer) (event.Instruction, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: index needs a subcommand", errUsage)
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "create":
		if len(rest) == 0 {
			return nil, fmt.Errorf("%w: index create needs a name", errUsage)
		}
		return &event.CreateIndexInstruction{Name: rest[0], Keys: rest[1:]}, nil

	case "delete", "show":
		fs := newFlagSet("index "+sub, stderr)
		name := fs.String("name", "", "Select the first index with this name")
		if err := fs.Parse(rest); err != nil {
			return nil, errUsage
		}
		if *name != "" {
			if sub == "delete" {
				return &event.DeleteIndexByNameInstruction{Name: *name}, nil
			}
			return &event.LookupIndexInstruction{Name: *name}, nil
		}
		if fs.NArg() != 1 {
			return nil, fmt.Errorf("%w: index %s needs an id or -name", errUsage, sub)
		}
		id, err := parseID(fs.Arg(0))
		if err != nil {
			return nil, err
		}
		if sub == "delete" {
			return &event.DeleteIndexInstruction{ID: id}, nil
		}
		return &event.GetIndexInstruction{ID: id}, nil

	case "list":
		return &event.ListIndicesInstruction{}, nil

	case "snapshot":
		if len(rest) != 3 {
			return nil, fmt.Errorf("%w: index snapshot needs <id> <product> <price>", errUsage)
		}
		id, err := parseID(rest[0])
		if err != nil {
			return nil, err
		}
		keys, err := parseKeys(rest[1:], 2)
		if err != nil {
			return nil, err
		}
		return &event.AttachSnapshotInstruction{ID: id, Product: keys[0], Price: keys[1]}, nil

	default:
		return nil, fmt.Errorf("%w: unknown index subcommand %q", errUsage, sub)
	}
}

func parseAccountsCommand(args []string) (event.Instruction, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: accounts needs a subcommand", errUsage)
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		return &event.ListAccountsInstruction{}, nil

	case "import":
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: accounts import needs <key> <file>", errUsage)
		}
		keys, err := parseKeys(rest[:1], 1)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(rest[1])
		if err != nil {
			return nil, fmt.Errorf("failed to read account dump: %w", err)
		}
		return &event.ImportAccountInstruction{Key: keys[0], Data: data}, nil

	default:
		return nil, fmt.Errorf("%w: unknown accounts subcommand %q", errUsage, sub)
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseKeys(args []string, n int) ([]layout.AccountKey, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%w: expected %d account key(s), got %d", errUsage, n, len(args))
	}
	keys := make([]layout.AccountKey, n)
	for i, a := range args {
		k, err := layout.ParseAccountKey(a)
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	return keys, nil
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad index id %q", errUsage, s)
	}
	return id, nil
}

func parseAccountType(s string) (layout.AccountType, error) {
	for _, t := range []layout.AccountType{layout.AccountTypePrice, layout.AccountTypeProduct, layout.AccountTypeMapping} {
		if t.String() == s {
			return t, nil
		}
	}
	return layout.AccountTypeUnknown, fmt.Errorf("%w: unknown account type %q", errUsage, s)
}
